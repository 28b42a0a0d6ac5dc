package service

import (
	"context"
	"time"

	"timeclock_backend/internal/serviceorders/repository"
	"timeclock_backend/internal/serviceorders/transport"
	"timeclock_backend/platform/logger"
)

// Service provides service order scheduling, assignment and resolution.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new service orders service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// isActiveAt reports whether the order's expected schedule window covers the
// given instant: expected_start <= now <= expected_start + duration.
func isActiveAt(order repository.ServiceOrder, now time.Time) bool {
	if order.Status != repository.StatusOpen {
		return false
	}
	end := order.ExpectedStart.Add(time.Duration(order.ExpectedDurationHours) * time.Hour)
	return !now.Before(order.ExpectedStart) && !now.After(end)
}

// ActiveForUser returns the user's assigned OPEN orders whose schedule window
// covers the given instant.
func (s *Service) ActiveForUser(ctx context.Context, userID int64, now time.Time) ([]repository.ServiceOrder, error) {
	orders, err := s.repo.ListOpenAssigned(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := []repository.ServiceOrder{}
	for _, order := range orders {
		if isActiveAt(order, now) {
			active = append(active, order)
		}
	}
	return active, nil
}

// ResolveImplicit returns the id of the user's single active order, or nil
// when zero or several orders are active. Ambiguity never picks a winner.
func (s *Service) ResolveImplicit(ctx context.Context, userID int64, now time.Time) (*int64, error) {
	active, err := s.ActiveForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if len(active) != 1 {
		return nil, nil
	}
	return &active[0].ID, nil
}

// Authorize reports whether the order is OPEN and assigned to the user.
func (s *Service) Authorize(ctx context.Context, userID, serviceOrderID int64) (bool, error) {
	return s.repo.IsAssignedOpen(ctx, userID, serviceOrderID)
}

// Create schedules a new service order.
func (s *Service) Create(ctx context.Context, adminID int64, req transport.CreateServiceOrderRequest) (transport.ServiceOrderResponse, error) {
	order, err := s.repo.Create(ctx, repository.CreateParams{
		Title:                 req.Title,
		Description:           req.Description,
		LocationText:          req.LocationText,
		ExpectedStart:         req.ExpectedStart,
		ExpectedDurationHours: req.ExpectedDurationHours,
		CreatedBy:             adminID,
	})
	if err != nil {
		return transport.ServiceOrderResponse{}, err
	}

	s.log.Info("service order created", "service_order_id", order.ID, "created_by", adminID)
	return toOrderResponse(order), nil
}

// Get returns a single service order.
func (s *Service) Get(ctx context.Context, id int64) (transport.ServiceOrderResponse, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceOrderResponse{}, err
	}
	return toOrderResponse(order), nil
}

// List returns service orders, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) (transport.ServiceOrderListResponse, error) {
	orders, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return transport.ServiceOrderListResponse{}, err
	}
	return toListResponse(orders), nil
}

// ListMine returns the caller's assigned OPEN orders.
func (s *Service) ListMine(ctx context.Context, userID int64) (transport.ServiceOrderListResponse, error) {
	orders, err := s.repo.ListOpenAssigned(ctx, userID)
	if err != nil {
		return transport.ServiceOrderListResponse{}, err
	}
	return toListResponse(orders), nil
}

// MyActive reports the caller's single active order, or none when zero or
// several are active.
func (s *Service) MyActive(ctx context.Context, userID int64, now time.Time) (transport.ActiveServiceOrderResponse, error) {
	active, err := s.ActiveForUser(ctx, userID, now)
	if err != nil {
		return transport.ActiveServiceOrderResponse{}, err
	}
	if len(active) != 1 {
		return transport.ActiveServiceOrderResponse{}, nil
	}
	resp := toOrderResponse(active[0])
	return transport.ActiveServiceOrderResponse{ServiceOrder: &resp}, nil
}

// Assign links a worker to an order.
func (s *Service) Assign(ctx context.Context, orderID int64, req transport.AssignRequest) error {
	if err := s.repo.Assign(ctx, orderID, req.UserID); err != nil {
		return err
	}
	s.log.Info("service order assigned", "service_order_id", orderID, "user_id", req.UserID)
	return nil
}

// Close transitions an order to CLOSED. The transition is one way.
func (s *Service) Close(ctx context.Context, orderID, adminID int64) (transport.ServiceOrderResponse, error) {
	order, err := s.repo.Close(ctx, orderID, adminID)
	if err != nil {
		return transport.ServiceOrderResponse{}, err
	}

	s.log.Info("service order closed", "service_order_id", order.ID, "closed_by", adminID)
	return toOrderResponse(order), nil
}

func toListResponse(orders []repository.ServiceOrder) transport.ServiceOrderListResponse {
	out := make([]transport.ServiceOrderResponse, len(orders))
	for i, order := range orders {
		out[i] = toOrderResponse(order)
	}
	return transport.ServiceOrderListResponse{ServiceOrders: out}
}

func toOrderResponse(o repository.ServiceOrder) transport.ServiceOrderResponse {
	resp := transport.ServiceOrderResponse{
		ID:                    o.ID,
		Title:                 o.Title,
		Description:           o.Description,
		LocationText:          o.LocationText,
		ExpectedStart:         o.ExpectedStart.Format(time.RFC3339),
		ExpectedDurationHours: o.ExpectedDurationHours,
		Status:                o.Status,
		CreatedBy:             o.CreatedBy,
		CreatedAt:             o.CreatedAt.Format(time.RFC3339),
		ClosedBy:              o.ClosedBy,
	}
	if o.ClosedAt != nil {
		formatted := o.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &formatted
	}
	return resp
}
