// Package timeclock provides the clock ledger bounded context: the
// append-only entry log, the journey transition guard, and the clock/status
// operations.
package timeclock

import (
	apphttp "timeclock_backend/internal/http"
	"timeclock_backend/internal/timeclock/handler"
	"timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/internal/timeclock/service"
	"timeclock_backend/platform/logger"
	"timeclock_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the timeclock bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the timeclock module. The resolver and
// checker come from the serviceorders and alerts modules respectively.
func NewModule(pool *pgxpool.Pool, resolver service.OrderResolver, checker service.InconsistencyChecker, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, resolver, checker, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "timeclock"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the ledger repository for modules that read entries.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts timeclock routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	timeGroup := ctx.Protected.Group("/time")
	timeGroup.POST("/clock", m.handler.Clock)
	timeGroup.GET("/status", m.handler.Status)
	timeGroup.GET("/entries", m.handler.ListEntries)

	ctx.Admin.GET("/entries", m.handler.ListAllEntries)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
