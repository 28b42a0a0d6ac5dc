package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"timeclock_backend/internal/serviceorders/service"
	"timeclock_backend/internal/serviceorders/transport"
	"timeclock_backend/platform/httpkit"
	"timeclock_backend/platform/validator"
)

// Handler handles HTTP requests for service orders.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new service orders handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create schedules a new service order.
// POST /api/v1/admin/service-orders
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateServiceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Get returns one service order.
// GET /api/v1/admin/service-orders/:id
func (h *Handler) Get(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), orderID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// List returns service orders, optionally filtered by status.
// GET /api/v1/admin/service-orders
func (h *Handler) List(c *gin.Context) {
	var query transport.ListServiceOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), query.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Assign links a worker to a service order.
// POST /api/v1/admin/service-orders/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.svc.Assign(c.Request.Context(), orderID, req); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Close transitions a service order to CLOSED.
// PATCH /api/v1/admin/service-orders/:id/close
func (h *Handler) Close(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	orderID, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Close(c.Request.Context(), orderID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListMine returns the caller's assigned open orders.
// GET /api/v1/service-orders/my
func (h *Handler) ListMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListMine(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MyActive returns the caller's single active order, if exactly one.
// GET /api/v1/service-orders/my/active
func (h *Handler) MyActive(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.MyActive(c.Request.Context(), identity.UserID(), time.Now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid service order id", nil)
		return 0, false
	}
	return id, true
}
