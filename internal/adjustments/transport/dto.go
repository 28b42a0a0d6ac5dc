package transport

import (
	"time"

	alertstransport "timeclock_backend/internal/alerts/transport"
	timeclocktransport "timeclock_backend/internal/timeclock/transport"
)

// CloseJourneyRequest contains data for force-closing a stuck journey.
type CloseJourneyRequest struct {
	AlertID        int64      `json:"alertId" validate:"required,gt=0"`
	OccurredAt     *time.Time `json:"occurredAt,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64   `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	ResolutionNote string     `json:"resolutionNote" validate:"required,min=3,max=500"`
}

// CloseJourneyResponse returns the compensating entry and the resolved alert.
type CloseJourneyResponse struct {
	Entry timeclocktransport.EntryResponse `json:"entry"`
	Alert alertstransport.AlertResponse    `json:"alert"`
}
