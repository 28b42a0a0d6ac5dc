package transport

// Inconsistency describes a detected stuck-open journey, returned alongside
// clock and status responses.
type Inconsistency struct {
	AlertID      int64   `json:"alertId"`
	Severity     int     `json:"severity"`
	CreatedAlert bool    `json:"createdAlert"`
	ElapsedHours float64 `json:"elapsedHours"`
	Note         string  `json:"note"`
}

// ResolveAlertRequest contains data for resolving an alert directly.
type ResolveAlertRequest struct {
	ResolutionNote string `json:"resolutionNote" validate:"required,min=3,max=500"`
}

// ListAlertsQuery contains filters for the administrator alert listing.
type ListAlertsQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=open resolved"`
	UserID *int64 `form:"user_id" validate:"omitempty,gt=0"`
	Limit  int    `form:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset int    `form:"offset" validate:"omitempty,gte=0"`
}

// AlertResponse represents an alert in API responses.
type AlertResponse struct {
	ID                int64   `json:"id"`
	Kind              string  `json:"kind"`
	UserID            int64   `json:"userId"`
	TriggeringEntryID *int64  `json:"triggeringEntryId,omitempty"`
	Severity          int     `json:"severity"`
	Note              string  `json:"note"`
	CreatedAt         string  `json:"createdAt"`
	ResolvedAt        *string `json:"resolvedAt,omitempty"`
	ResolvedBy        *int64  `json:"resolvedBy,omitempty"`
	ResolutionNote    *string `json:"resolutionNote,omitempty"`
}

// AlertWithUserResponse adds the worker's name for administrator listings.
type AlertWithUserResponse struct {
	AlertResponse
	UserName string `json:"userName"`
}

// AlertListResponse wraps the administrator alert listing.
type AlertListResponse struct {
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Alerts []AlertWithUserResponse `json:"alerts"`
}

// ResolvedAlertResponse wraps a single resolved alert.
type ResolvedAlertResponse struct {
	Alert AlertResponse `json:"alert"`
}
