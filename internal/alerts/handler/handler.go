package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"timeclock_backend/internal/alerts/service"
	"timeclock_backend/internal/alerts/transport"
	"timeclock_backend/platform/httpkit"
	"timeclock_backend/platform/validator"
)

// Handler handles HTTP requests for consistency alerts.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new alerts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns alerts filtered by status and user.
// GET /api/v1/admin/alerts
func (h *Handler) List(c *gin.Context) {
	var query transport.ListAlertsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Resolve marks an open alert as resolved without amending the ledger.
// PATCH /api/v1/admin/alerts/:id/resolve
func (h *Handler) Resolve(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	alertID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || alertID <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid alert id", nil)
		return
	}

	var req transport.ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Resolve(c.Request.Context(), alertID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
