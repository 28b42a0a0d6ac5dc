package transport

import "time"

// CreateServiceOrderRequest contains data for scheduling a service order.
type CreateServiceOrderRequest struct {
	Title                 string    `json:"title" validate:"required,min=3,max=200"`
	Description           *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	LocationText          *string   `json:"locationText,omitempty" validate:"omitempty,max=500"`
	ExpectedStart         time.Time `json:"expectedStart" validate:"required"`
	ExpectedDurationHours int       `json:"expectedDurationHours" validate:"required,gt=0,lte=168"`
}

// AssignRequest contains data for assigning a worker to an order.
type AssignRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// ListServiceOrdersQuery filters the administrator order listing.
type ListServiceOrdersQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=OPEN CLOSED"`
}

// ServiceOrderResponse represents a service order in API responses.
type ServiceOrderResponse struct {
	ID                    int64   `json:"id"`
	Title                 string  `json:"title"`
	Description           *string `json:"description,omitempty"`
	LocationText          *string `json:"locationText,omitempty"`
	ExpectedStart         string  `json:"expectedStart"`
	ExpectedDurationHours int     `json:"expectedDurationHours"`
	Status                string  `json:"status"`
	CreatedBy             int64   `json:"createdBy"`
	CreatedAt             string  `json:"createdAt"`
	ClosedAt              *string `json:"closedAt,omitempty"`
	ClosedBy              *int64  `json:"closedBy,omitempty"`
}

// ServiceOrderListResponse wraps an order listing.
type ServiceOrderListResponse struct {
	ServiceOrders []ServiceOrderResponse `json:"serviceOrders"`
}

// ActiveServiceOrderResponse reports the caller's single active order, if any.
type ActiveServiceOrderResponse struct {
	ServiceOrder *ServiceOrderResponse `json:"serviceOrder"`
}
