// Package serviceorders provides the service order bounded context:
// scheduling, worker assignment and the implicit order resolution used by the
// clock path.
package serviceorders

import (
	apphttp "timeclock_backend/internal/http"
	"timeclock_backend/internal/serviceorders/handler"
	"timeclock_backend/internal/serviceorders/repository"
	"timeclock_backend/internal/serviceorders/service"
	"timeclock_backend/platform/logger"
	"timeclock_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the service orders bounded context module implementing
// http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the service orders module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "serviceorders"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts service order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	mine := ctx.Protected.Group("/service-orders")
	mine.GET("/my", m.handler.ListMine)
	mine.GET("/my/active", m.handler.MyActive)

	admin := ctx.Admin.Group("/service-orders")
	admin.POST("", m.handler.Create)
	admin.GET("", m.handler.List)
	admin.GET("/:id", m.handler.Get)
	admin.POST("/:id/assign", m.handler.Assign)
	admin.PATCH("/:id/close", m.handler.Close)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
