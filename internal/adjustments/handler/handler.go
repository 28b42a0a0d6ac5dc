package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"timeclock_backend/internal/adjustments/service"
	"timeclock_backend/internal/adjustments/transport"
	"timeclock_backend/platform/httpkit"
	"timeclock_backend/platform/validator"
)

// Handler handles HTTP requests for administrator ledger adjustments.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new adjustments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CloseJourney force-closes a worker's stuck journey.
// POST /api/v1/admin/users/:id/close-journey
func (h *Handler) CloseJourney(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	var req transport.CloseJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.CloseJourney(c.Request.Context(), userID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
