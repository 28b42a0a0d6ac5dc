package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"timeclock_backend/internal/alerts/repository"
	"timeclock_backend/internal/alerts/transport"
	"timeclock_backend/internal/events"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/apperr"
	"timeclock_backend/platform/logger"
)

const (
	// MaxJourneyDuration is the working limit at which an open journey is
	// flagged at severity 1.
	MaxJourneyDuration = 12 * time.Hour
	// ToleranceJourneyDuration is the hard ceiling at which an open journey
	// escalates to severity 2.
	ToleranceJourneyDuration = 13 * time.Hour

	// maxEnsureAttempts bounds the create/escalate retry loop when a
	// concurrent evaluation races on the open-alert unique index.
	maxEnsureAttempts = 3
)

// EntryReader is the slice of the clock ledger the engine needs.
type EntryReader interface {
	LastEntry(ctx context.Context, userID int64) (*timeclockrepo.Entry, error)
}

// Service implements the journey inconsistency alert engine.
type Service struct {
	repo    repository.Repository
	entries EntryReader
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new alerts service.
func New(repo repository.Repository, entries EntryReader, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		entries: entries,
		bus:     bus,
		log:     log,
	}
}

// Evaluate checks whether the user's journey is open past the working limit
// and converges the alert state: no alert below the limit, severity 1 past
// the limit, severity 2 past the tolerance. Returns nil when the user is not
// in a journey or the journey is still within the limit.
func (s *Service) Evaluate(ctx context.Context, userID int64, now time.Time) (*transport.Inconsistency, error) {
	last, err := s.entries.LastEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	if last == nil || last.Kind != timeclockrepo.EntryKindIn {
		return nil, nil
	}

	elapsed := now.Sub(last.OccurredAt)
	if elapsed < MaxJourneyDuration {
		return nil, nil
	}

	severity := repository.SeverityExceeded
	if elapsed >= ToleranceJourneyDuration {
		severity = repository.SeverityTolerance
	}

	// The thresholds compare the raw duration; the rounded figure is for the
	// note and the response only.
	elapsedHours := roundHours(elapsed.Hours())
	note := fmt.Sprintf("journey inconsistent: IN entry open for ~%.1fh (max=%.0fh, tolerance=%.0fh)",
		elapsedHours, MaxJourneyDuration.Hours(), ToleranceJourneyDuration.Hours())

	return s.ensureAlert(ctx, userID, last.ID, severity, note, elapsedHours)
}

// ensureAlert finds or creates the open alert for the triggering entry and
// escalates its severity when needed. Concurrent evaluations may race on the
// open-alert unique index; the loser re-reads and converges on the winner's
// row.
func (s *Service) ensureAlert(ctx context.Context, userID, entryID int64, severity int16, note string, elapsed float64) (*transport.Inconsistency, error) {
	var lastErr error

	for attempt := 0; attempt < maxEnsureAttempts; attempt++ {
		existing, err := s.repo.FindUnresolved(ctx, repository.KindJourneyInconsistent, userID, entryID)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			created, err := s.repo.Create(ctx, repository.CreateAlertParams{
				Kind:              repository.KindJourneyInconsistent,
				UserID:            userID,
				TriggeringEntryID: entryID,
				Severity:          severity,
				Note:              note,
			})
			if err != nil {
				if apperr.GetKind(err) == apperr.KindConflict {
					lastErr = err
					continue
				}
				return nil, err
			}

			s.log.AlertEvent("created", created.ID, userID, int(created.Severity))
			s.bus.Publish(ctx, events.AlertCreated{
				BaseEvent:    events.NewBaseEvent(),
				AlertID:      created.ID,
				UserID:       userID,
				Severity:     int(created.Severity),
				ElapsedHours: elapsed,
			})

			return &transport.Inconsistency{
				AlertID:      created.ID,
				Severity:     int(created.Severity),
				CreatedAlert: true,
				ElapsedHours: elapsed,
				Note:         created.Note,
			}, nil
		}

		if severity != existing.Severity {
			escalated := severity > existing.Severity

			updated, err := s.repo.UpdateSeverity(ctx, existing.ID, severity, note)
			if err != nil {
				if apperr.GetKind(err) == apperr.KindConflict {
					lastErr = err
					continue
				}
				return nil, err
			}

			if escalated {
				s.log.AlertEvent("escalated", updated.ID, userID, int(updated.Severity))
				s.bus.Publish(ctx, events.AlertEscalated{
					BaseEvent:    events.NewBaseEvent(),
					AlertID:      updated.ID,
					UserID:       userID,
					Severity:     int(updated.Severity),
					ElapsedHours: elapsed,
				})
			}
			existing = &updated
		}

		return &transport.Inconsistency{
			AlertID:      existing.ID,
			Severity:     int(existing.Severity),
			CreatedAlert: false,
			ElapsedHours: elapsed,
			Note:         existing.Note,
		}, nil
	}

	return nil, apperr.Wrap(apperr.KindConflict, "concurrent alert evaluation did not converge", lastErr)
}

// Resolve marks an alert as resolved without touching the ledger. Closing the
// journey itself is the compensation path's job.
func (s *Service) Resolve(ctx context.Context, alertID, adminID int64, req transport.ResolveAlertRequest) (transport.ResolvedAlertResponse, error) {
	alert, err := s.repo.Resolve(ctx, alertID, adminID, req.ResolutionNote)
	if err != nil {
		return transport.ResolvedAlertResponse{}, err
	}

	s.log.AlertEvent("resolved", alert.ID, alert.UserID, int(alert.Severity))

	return transport.ResolvedAlertResponse{Alert: ToAlertResponse(alert)}, nil
}

// List returns alerts matching the given filters, newest first.
func (s *Service) List(ctx context.Context, query transport.ListAlertsQuery) (transport.AlertListResponse, error) {
	limit := query.Limit
	if limit == 0 {
		limit = 50
	}

	alerts, total, err := s.repo.List(ctx, repository.ListParams{
		Status: query.Status,
		UserID: query.UserID,
		Limit:  limit,
		Offset: query.Offset,
	})
	if err != nil {
		return transport.AlertListResponse{}, err
	}

	out := make([]transport.AlertWithUserResponse, len(alerts))
	for i, a := range alerts {
		out[i] = transport.AlertWithUserResponse{
			AlertResponse: ToAlertResponse(a.Alert),
			UserName:      a.UserName,
		}
	}

	return transport.AlertListResponse{
		Total:  total,
		Limit:  limit,
		Offset: query.Offset,
		Alerts: out,
	}, nil
}

// ToAlertResponse converts an alert row to its API representation.
func ToAlertResponse(a repository.Alert) transport.AlertResponse {
	entryID := a.TriggeringEntryID
	resp := transport.AlertResponse{
		ID:                a.ID,
		Kind:              string(a.Kind),
		UserID:            a.UserID,
		TriggeringEntryID: &entryID,
		Severity:          int(a.Severity),
		Note:              a.Note,
		CreatedAt:         a.CreatedAt.Format(time.RFC3339),
		ResolvedBy:        a.ResolvedBy,
		ResolutionNote:    a.ResolutionNote,
	}
	if a.ResolvedAt != nil {
		formatted := a.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &formatted
	}
	return resp
}

// roundHours rounds an hour count to one decimal place, matching how elapsed
// time is reported in alert notes.
func roundHours(h float64) float64 {
	return math.Round(h*10) / 10
}
