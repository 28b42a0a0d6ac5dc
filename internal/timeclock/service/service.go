package service

import (
	"context"
	"time"

	alertstransport "timeclock_backend/internal/alerts/transport"
	"timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/internal/timeclock/transport"
	"timeclock_backend/platform/apperr"
	"timeclock_backend/platform/logger"
)

// OrderResolver binds clock events to scheduled service orders.
type OrderResolver interface {
	// ResolveImplicit returns the single active order for the user, or nil
	// when zero or several are active (the caller must then be explicit).
	ResolveImplicit(ctx context.Context, userID int64, now time.Time) (*int64, error)
	// Authorize reports whether the order is OPEN and assigned to the user.
	Authorize(ctx context.Context, userID, serviceOrderID int64) (bool, error)
}

// InconsistencyChecker re-evaluates the user's stuck-journey alert state.
type InconsistencyChecker interface {
	Evaluate(ctx context.Context, userID int64, now time.Time) (*alertstransport.Inconsistency, error)
}

// Service provides the clock and status operations.
type Service struct {
	repo     repository.Repository
	resolver OrderResolver
	checker  InconsistencyChecker
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new timeclock service.
func New(repo repository.Repository, resolver OrderResolver, checker InconsistencyChecker, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		checker:  checker,
		log:      log,
		now:      time.Now,
	}
}

// Clock registers an IN or OUT event for the user. The service order binding
// is resolved implicitly when omitted, the user's alert state is re-evaluated
// as a side effect, and the transition guard plus append run as one
// transactional read-modify-write.
func (s *Service) Clock(ctx context.Context, userID int64, req transport.ClockRequest) (transport.ClockResponse, error) {
	now := s.now()
	kind := repository.EntryKind(req.Kind)

	serviceOrderID := req.ServiceOrderID
	if serviceOrderID == nil {
		resolved, err := s.resolver.ResolveImplicit(ctx, userID, now)
		if err != nil {
			return transport.ClockResponse{}, err
		}
		serviceOrderID = resolved
	}

	if serviceOrderID != nil {
		ok, err := s.resolver.Authorize(ctx, userID, *serviceOrderID)
		if err != nil {
			return transport.ClockResponse{}, err
		}
		if !ok {
			return transport.ClockResponse{}, apperr.Forbidden("service order is not open or not assigned to user")
		}
	}

	inconsistency, err := s.checker.Evaluate(ctx, userID, now)
	if err != nil {
		return transport.ClockResponse{}, err
	}

	entry, err := s.repo.AppendClock(ctx, repository.CreateEntryParams{
		UserID:         userID,
		Kind:           kind,
		OccurredAt:     req.OccurredAt,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		ServiceOrderID: serviceOrderID,
	}, func(last *repository.Entry) error {
		return ValidateTransition(kind, last)
	})
	if err != nil {
		return transport.ClockResponse{}, err
	}

	s.log.ClockEvent(userID, string(entry.Kind), entry.ID)

	return transport.ClockResponse{
		Entry:         toEntryResponse(entry),
		Inconsistency: inconsistency,
	}, nil
}

// Status reports the user's current journey state. The alert state is
// re-evaluated on every read so alert severity keeps up with elapsed time
// without a background scheduler.
func (s *Service) Status(ctx context.Context, userID int64) (transport.StatusResponse, error) {
	inconsistency, err := s.checker.Evaluate(ctx, userID, s.now())
	if err != nil {
		return transport.StatusResponse{}, err
	}

	last, err := s.repo.LastEntry(ctx, userID)
	if err != nil {
		return transport.StatusResponse{}, err
	}

	resp := transport.StatusResponse{
		InJourney:     IsInJourney(last),
		Inconsistency: inconsistency,
	}
	if last != nil {
		entry := toEntryResponse(*last)
		resp.LastEntry = &entry
	}

	return resp, nil
}

// ListEntries returns a user's ledger entries within the given range.
func (s *Service) ListEntries(ctx context.Context, userID int64, from, to time.Time) (transport.EntryListResponse, error) {
	entries, err := s.repo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return transport.EntryListResponse{}, err
	}

	out := make([]transport.EntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = toEntryResponse(entry)
	}

	return transport.EntryListResponse{Entries: out}, nil
}

// ListAllEntries returns all users' entries within the given range (admin).
func (s *Service) ListAllEntries(ctx context.Context, from, to time.Time) (transport.AdminEntryListResponse, error) {
	entries, err := s.repo.ListAllWithUser(ctx, from, to)
	if err != nil {
		return transport.AdminEntryListResponse{}, err
	}

	out := make([]transport.EntryWithUserResponse, len(entries))
	for i, entry := range entries {
		out[i] = transport.EntryWithUserResponse{
			EntryResponse: toEntryResponse(entry.Entry),
			UserName:      entry.UserName,
		}
	}

	return transport.AdminEntryListResponse{Entries: out}, nil
}

func toEntryResponse(e repository.Entry) transport.EntryResponse {
	resp := transport.EntryResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		Kind:            string(e.Kind),
		OccurredAt:      e.OccurredAt.Format(time.RFC3339),
		Latitude:        e.Latitude,
		Longitude:       e.Longitude,
		ServiceOrderID:  e.ServiceOrderID,
		Note:            e.Note,
		AmendedBy:       e.AmendedBy,
		AmendmentReason: e.AmendmentReason,
		SourceAlertID:   e.SourceAlertID,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.AmendedAt != nil {
		formatted := e.AmendedAt.Format(time.RFC3339)
		resp.AmendedAt = &formatted
	}
	return resp
}
