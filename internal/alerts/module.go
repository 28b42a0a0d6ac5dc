// Package alerts provides the consistency alert bounded context: the stuck
// journey detection engine, alert persistence and the administrator alert
// surface.
package alerts

import (
	"timeclock_backend/internal/alerts/handler"
	"timeclock_backend/internal/alerts/repository"
	"timeclock_backend/internal/alerts/service"
	"timeclock_backend/internal/events"
	apphttp "timeclock_backend/internal/http"
	"timeclock_backend/platform/logger"
	"timeclock_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the alerts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the alerts module. The entry reader comes
// from the timeclock module's repository.
func NewModule(pool *pgxpool.Pool, entries service.EntryReader, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, entries, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "alerts"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts alert routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	alertGroup := ctx.Admin.Group("/alerts")
	alertGroup.GET("", m.handler.List)
	alertGroup.PATCH("/:id/resolve", m.handler.Resolve)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
