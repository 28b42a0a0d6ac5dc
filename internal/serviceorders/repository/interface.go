package repository

import (
	"context"
	"time"
)

// Status of a service order. Orders open on creation and close exactly once.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// ServiceOrder represents a scheduled field assignment.
type ServiceOrder struct {
	ID                    int64
	Title                 string
	Description           *string
	LocationText          *string
	ExpectedStart         time.Time
	ExpectedDurationHours int
	Status                string
	CreatedBy             int64
	CreatedAt             time.Time
	ClosedAt              *time.Time
	ClosedBy              *int64
}

// CreateParams contains data for creating a service order.
type CreateParams struct {
	Title                 string
	Description           *string
	LocationText          *string
	ExpectedStart         time.Time
	ExpectedDurationHours int
	CreatedBy             int64
}

// Repository defines service order persistence operations.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (ServiceOrder, error)
	GetByID(ctx context.Context, id int64) (ServiceOrder, error)
	ListAll(ctx context.Context, status string) ([]ServiceOrder, error)
	// ListOpenAssigned returns the OPEN orders assigned to a user. The active
	// schedule window is evaluated by the service layer.
	ListOpenAssigned(ctx context.Context, userID int64) ([]ServiceOrder, error)
	// Assign links a worker to an order. Duplicate assignment is a conflict.
	Assign(ctx context.Context, orderID, userID int64) error
	// Close transitions an order to CLOSED. Closing twice is a conflict.
	Close(ctx context.Context, orderID, closedBy int64) (ServiceOrder, error)
	// IsAssignedOpen reports whether the order is OPEN and the user is
	// assigned to it.
	IsAssignedOpen(ctx context.Context, userID, orderID int64) (bool, error)
}
