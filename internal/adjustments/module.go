// Package adjustments provides the administrator compensation bounded
// context: the atomic force-close of stuck journeys.
package adjustments

import (
	"timeclock_backend/internal/adjustments/handler"
	"timeclock_backend/internal/adjustments/repository"
	"timeclock_backend/internal/adjustments/service"
	"timeclock_backend/internal/events"
	apphttp "timeclock_backend/internal/http"
	"timeclock_backend/platform/logger"
	"timeclock_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the adjustments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the adjustments module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "adjustments"
}

// RegisterRoutes mounts adjustment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/users/:id/close-journey", m.handler.CloseJourney)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
