package transport

import (
	"time"

	alertstransport "timeclock_backend/internal/alerts/transport"
)

// ClockRequest contains data for registering a clock event.
type ClockRequest struct {
	Kind           string    `json:"kind" validate:"required,oneof=IN OUT"`
	OccurredAt     time.Time `json:"occurredAt" validate:"required"`
	Latitude       *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	ServiceOrderID *int64    `json:"serviceOrderId,omitempty" validate:"omitempty,gt=0"`
}

// ListEntriesQuery contains filters for entry listings. From/To are RFC 3339
// timestamps; either may be omitted for an open-ended range.
type ListEntriesQuery struct {
	UserID *int64 `form:"user_id" validate:"omitempty,gt=0"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID             int64    `json:"id"`
	UserID         int64    `json:"userId"`
	Kind           string   `json:"kind"`
	OccurredAt     string   `json:"occurredAt"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	ServiceOrderID *int64   `json:"serviceOrderId,omitempty"`

	Note            *string `json:"note,omitempty"`
	AmendedBy       *int64  `json:"amendedBy,omitempty"`
	AmendedAt       *string `json:"amendedAt,omitempty"`
	AmendmentReason *string `json:"amendmentReason,omitempty"`
	SourceAlertID   *int64  `json:"sourceAlertId,omitempty"`

	CreatedAt string `json:"createdAt"`
}

// EntryWithUserResponse adds the worker's name for administrator listings.
type EntryWithUserResponse struct {
	EntryResponse
	UserName string `json:"userName"`
}

// ClockResponse is returned after a successful clock event.
type ClockResponse struct {
	Entry         EntryResponse                 `json:"entry"`
	Inconsistency *alertstransport.Inconsistency `json:"inconsistency,omitempty"`
}

// StatusResponse describes the caller's current journey state.
type StatusResponse struct {
	InJourney     bool                           `json:"inJourney"`
	LastEntry     *EntryResponse                 `json:"lastEntry,omitempty"`
	Inconsistency *alertstransport.Inconsistency `json:"inconsistency,omitempty"`
}

// EntryListResponse wraps a worker's entry listing.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// AdminEntryListResponse wraps the all-users entry listing.
type AdminEntryListResponse struct {
	Entries []EntryWithUserResponse `json:"entries"`
}
