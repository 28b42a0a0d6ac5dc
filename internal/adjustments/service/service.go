package service

import (
	"context"
	"time"

	"timeclock_backend/internal/adjustments/repository"
	"timeclock_backend/internal/adjustments/transport"
	alertsservice "timeclock_backend/internal/alerts/service"
	"timeclock_backend/internal/events"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	timeclocktransport "timeclock_backend/internal/timeclock/transport"
	"timeclock_backend/platform/logger"
)

// Service provides the administrator compensation operations.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new adjustments service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log,
		now:  time.Now,
	}
}

// CloseJourney force-closes a stuck journey: one compensating OUT entry is
// appended and the alert resolved, atomically. The closing timestamp defaults
// to the current time when the administrator does not supply one.
func (s *Service) CloseJourney(ctx context.Context, userID, adminID int64, req transport.CloseJourneyRequest) (transport.CloseJourneyResponse, error) {
	occurredAt := s.now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	entry, alert, err := s.repo.CloseJourney(ctx, repository.CloseJourneyParams{
		UserID:         userID,
		AlertID:        req.AlertID,
		AdminID:        adminID,
		OccurredAt:     occurredAt,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		ResolutionNote: req.ResolutionNote,
	})
	if err != nil {
		return transport.CloseJourneyResponse{}, err
	}

	s.log.Info("journey force closed",
		"user_id", userID, "admin_id", adminID,
		"alert_id", alert.ID, "entry_id", entry.ID)
	s.bus.Publish(ctx, events.JourneyForceClosed{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
		AdminID:   adminID,
		AlertID:   alert.ID,
		EntryID:   entry.ID,
	})

	return transport.CloseJourneyResponse{
		Entry: toEntryResponse(entry),
		Alert: alertsservice.ToAlertResponse(alert),
	}, nil
}

func toEntryResponse(e timeclockrepo.Entry) timeclocktransport.EntryResponse {
	resp := timeclocktransport.EntryResponse{
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
