package service

import (
	"context"
	"testing"
	"time"

	"timeclock_backend/internal/serviceorders/repository"
	"timeclock_backend/platform/apperr"
	"timeclock_backend/platform/logger"
)

type fakeOrderRepo struct {
	orders      map[int64]*repository.ServiceOrder
	assignments map[int64][]int64 // order id -> user ids
	nextID      int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:      map[int64]*repository.ServiceOrder{},
		assignments: map[int64][]int64{},
		nextID:      1,
	}
}

func (f *fakeOrderRepo) Create(_ context.Context, params repository.CreateParams) (repository.ServiceOrder, error) {
	order := repository.ServiceOrder{
		ID:                    f.nextID,
		Title:                 params.Title,
		Description:           params.Description,
		LocationText:          params.LocationText,
		ExpectedStart:         params.ExpectedStart,
		ExpectedDurationHours: params.ExpectedDurationHours,
		Status:                repository.StatusOpen,
		CreatedBy:             params.CreatedBy,
		CreatedAt:             time.Now(),
	}
	f.nextID++
	f.orders[order.ID] = &order
	return order, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (repository.ServiceOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return repository.ServiceOrder{}, apperr.NotFound("service order not found")
	}
	return *order, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context, status string) ([]repository.ServiceOrder, error) {
	var out []repository.ServiceOrder
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListOpenAssigned(_ context.Context, userID int64) ([]repository.ServiceOrder, error) {
	var out []repository.ServiceOrder
	for orderID, users := range f.assignments {
		order := f.orders[orderID]
		if order == nil || order.Status != repository.StatusOpen {
			continue
		}
		for _, u := range users {
			if u == userID {
				out = append(out, *order)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Assign(_ context.Context, orderID, userID int64) error {
	order, ok := f.orders[orderID]
	if !ok {
		return apperr.NotFound("service order not found")
	}
	if order.Status != repository.StatusOpen {
		return apperr.Conflict("service order is closed")
	}
	for _, u := range f.assignments[orderID] {
		if u == userID {
			return apperr.Conflict("user is already assigned to this service order")
		}
	}
	f.assignments[orderID] = append(f.assignments[orderID], userID)
	return nil
}

func (f *fakeOrderRepo) Close(_ context.Context, orderID, closedBy int64) (repository.ServiceOrder, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return repository.ServiceOrder{}, apperr.NotFound("service order not found")
	}
	if order.Status != repository.StatusOpen {
		return repository.ServiceOrder{}, apperr.Conflict("service order is already closed")
	}
	now := time.Now()
	order.Status = repository.StatusClosed
	order.ClosedAt = &now
	order.ClosedBy = &closedBy
	return *order, nil
}

func (f *fakeOrderRepo) IsAssignedOpen(_ context.Context, userID, orderID int64) (bool, error) {
	order, ok := f.orders[orderID]
	if !ok || order.Status != repository.StatusOpen {
		return false, nil
	}
	for _, u := range f.assignments[orderID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func seedOrder(t *testing.T, repo *fakeOrderRepo, userID int64, start time.Time, durationHours int) repository.ServiceOrder {
	t.Helper()
	order, err := repo.Create(context.Background(), repository.CreateParams{
		Title:                 "maintenance visit",
		ExpectedStart:         start,
		ExpectedDurationHours: durationHours,
		CreatedBy:             99,
	})
	if err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	if err := repo.Assign(context.Background(), order.ID, userID); err != nil {
		t.Fatalf("seed assignment failed: %v", err)
	}
	return order
}

func TestResolveImplicitNoActiveOrders(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	now := time.Now()

	// An assigned order whose window has not started yet.
	seedOrder(t, repo, 1, now.Add(2*time.Hour), 8)

	resolved, err := svc.ResolveImplicit(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != nil {
		t.Fatalf("expected nil, got order %d", *resolved)
	}
}

func TestResolveImplicitSingleActiveOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	now := time.Now()

	order := seedOrder(t, repo, 1, now.Add(-1*time.Hour), 8)
	seedOrder(t, repo, 1, now.Add(24*time.Hour), 8) // future, inactive

	resolved, err := svc.ResolveImplicit(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved == nil || *resolved != order.ID {
		t.Fatalf("expected order %d, got %v", order.ID, resolved)
	}
}

func TestResolveImplicitAmbiguousReturnsNil(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	now := time.Now()

	seedOrder(t, repo, 1, now.Add(-1*time.Hour), 8)
	seedOrder(t, repo, 1, now.Add(-2*time.Hour), 8)

	resolved, err := svc.ResolveImplicit(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != nil {
		t.Fatalf("two active orders must not resolve, got %d", *resolved)
	}
}

func TestActiveWindowBoundaries(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	order := seedOrder(t, repo, 1, start, 8)

	cases := []struct {
		name   string
		at     time.Time
		active bool
	}{
		{"before start", start.Add(-time.Minute), false},
		{"at start", start, true},
		{"mid window", start.Add(4 * time.Hour), true},
		{"at window end", start.Add(8 * time.Hour), true},
		{"after window end", start.Add(8*time.Hour + time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			active, err := svc.ActiveForUser(context.Background(), 1, tc.at)
			if err != nil {
				t.Fatalf("active lookup failed: %v", err)
			}
			got := len(active) == 1 && active[0].ID == order.ID
			if got != tc.active {
				t.Fatalf("at %s expected active=%v, got %v", tc.at, tc.active, got)
			}
		})
	}
}

func TestClosedOrderIsNeverActive(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	now := time.Now()

	order := seedOrder(t, repo, 1, now.Add(-1*time.Hour), 8)
	if _, err := repo.Close(context.Background(), order.ID, 99); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	resolved, err := svc.ResolveImplicit(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != nil {
		t.Fatalf("closed order must not resolve, got %d", *resolved)
	}
}

func TestAuthorize(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	now := time.Now()
	ctx := context.Background()

	order := seedOrder(t, repo, 1, now, 8)

	ok, err := svc.Authorize(ctx, 1, order.ID)
	if err != nil || !ok {
		t.Fatalf("assigned user should be authorized, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.Authorize(ctx, 2, order.ID)
	if err != nil || ok {
		t.Fatalf("unassigned user should not be authorized, got ok=%v err=%v", ok, err)
	}

	if _, err := repo.Close(ctx, order.ID, 99); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	ok, err = svc.Authorize(ctx, 1, order.ID)
	if err != nil || ok {
		t.Fatalf("closed order should not authorize, got ok=%v err=%v", ok, err)
	}
}

func TestCloseIsOneWay(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := New(repo, logger.New("test"))
	ctx := context.Background()

	order := seedOrder(t, repo, 1, time.Now(), 8)

	closed, err := svc.Close(ctx, order.ID, 99)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != repository.StatusClosed || closed.ClosedAt == nil {
		t.Fatalf("expected closed order, got %+v", closed)
	}

	_, err = svc.Close(ctx, order.ID, 99)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("double close should conflict, got %v", err)
	}
}
