package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timeclock_backend/internal/timeclock/service"
	"timeclock_backend/internal/timeclock/transport"
	"timeclock_backend/platform/httpkit"
	"timeclock_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the clock ledger.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new timeclock handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Clock registers an IN or OUT event for the authenticated worker.
// POST /api/v1/time/clock
func (h *Handler) Clock(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Clock(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Status reports the authenticated worker's journey state.
// GET /api/v1/time/status
func (h *Handler) Status(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Status(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListEntries lists the caller's entries; administrators may pass user_id to
// inspect another worker's ledger.
// GET /api/v1/time/entries
func (h *Handler) ListEntries(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var query transport.ListEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	targetUserID := identity.UserID()
	if query.UserID != nil {
		if !identity.IsAdmin() {
			httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		targetUserID = *query.UserID
	}

	from, to, ok := parseRange(c, query.From, query.To)
	if !ok {
		return
	}

	result, err := h.svc.ListEntries(c.Request.Context(), targetUserID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListAllEntries lists every worker's entries (admin only).
// GET /api/v1/admin/entries
func (h *Handler) ListAllEntries(c *gin.Context) {
	var query transport.ListEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	from, to, ok := parseRange(c, query.From, query.To)
	if !ok {
		return
	}

	result, err := h.svc.ListAllEntries(c.Request.Context(), from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseRange(c *gin.Context, fromRaw, toRaw string) (time.Time, time.Time, bool) {
	from := time.Time{}
	to := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

	if fromRaw != "" {
		parsed, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from timestamp", nil)
			return from, to, false
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to timestamp", nil)
			return from, to, false
		}
		to = parsed
	}

	return from, to, true
}
