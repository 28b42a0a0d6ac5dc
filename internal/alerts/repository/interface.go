package repository

import (
	"context"
	"time"
)

// AlertKind identifies the class of consistency violation an alert tracks.
type AlertKind string

// KindJourneyInconsistent marks a journey left open past the working limit.
const KindJourneyInconsistent AlertKind = "JOURNEY_INCONSISTENT"

// Severity levels for journey inconsistency alerts.
const (
	SeverityExceeded  int16 = 1
	SeverityTolerance int16 = 2
)

// Alert represents a consistency alert row.
type Alert struct {
	ID                int64
	Kind              AlertKind
	UserID            int64
	TriggeringEntryID int64
	Severity          int16
	Note              string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
	ResolvedBy        *int64
	ResolutionNote    *string
}

// AlertWithUser pairs an alert with the worker's display name.
type AlertWithUser struct {
	Alert
	UserName string
}

// CreateAlertParams contains data for opening a new alert.
type CreateAlertParams struct {
	Kind              AlertKind
	UserID            int64
	TriggeringEntryID int64
	Severity          int16
	Note              string
}

// ListParams filters alert listings.
type ListParams struct {
	Status string // "open", "resolved" or "" for all
	UserID *int64
	Limit  int
	Offset int
}

// Repository defines alert persistence operations.
type Repository interface {
	// FindUnresolved returns the open alert for (kind, user, entry), or nil.
	FindUnresolved(ctx context.Context, kind AlertKind, userID, entryID int64) (*Alert, error)
	// Create opens a new alert. A concurrent duplicate open alert surfaces as
	// a conflict error.
	Create(ctx context.Context, params CreateAlertParams) (Alert, error)
	// UpdateSeverity raises the severity and note of an open alert.
	UpdateSeverity(ctx context.Context, id int64, severity int16, note string) (Alert, error)
	GetByID(ctx context.Context, id int64) (Alert, error)
	// Resolve marks an open alert as resolved. Resolving an already resolved
	// alert is a conflict.
	Resolve(ctx context.Context, id, resolvedBy int64, resolutionNote string) (Alert, error)
	List(ctx context.Context, params ListParams) ([]AlertWithUser, int, error)
}
