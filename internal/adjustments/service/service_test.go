package service

import (
	"context"
	"testing"
	"time"

	"timeclock_backend/internal/adjustments/repository"
	"timeclock_backend/internal/adjustments/transport"
	alertsrepo "timeclock_backend/internal/alerts/repository"
	"timeclock_backend/internal/events"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/logger"
)

type fakeAdjustmentsRepo struct {
	lastParams repository.CloseJourneyParams
}

func (f *fakeAdjustmentsRepo) CloseJourney(_ context.Context, params repository.CloseJourneyParams) (timeclockrepo.Entry, alertsrepo.Alert, error) {
	f.lastParams = params

	reason := repository.AmendmentReasonCloseJourney
	note := params.ResolutionNote
	now := time.Now()

	entry := timeclockrepo.Entry{
		ID:              100,
		UserID:          params.UserID,
		Kind:            timeclockrepo.EntryKindOut,
		OccurredAt:      params.OccurredAt,
		Note:            &note,
		AmendedBy:       &params.AdminID,
		AmendedAt:       &now,
		AmendmentReason: &reason,
		SourceAlertID:   &params.AlertID,
		CreatedAt:       now,
	}
	alert := alertsrepo.Alert{
		ID:                params.AlertID,
		Kind:              alertsrepo.KindJourneyInconsistent,
		UserID:            params.UserID,
		TriggeringEntryID: 99,
		Severity:          alertsrepo.SeverityTolerance,
		CreatedAt:         now.Add(-2 * time.Hour),
		ResolvedAt:        &now,
		ResolvedBy:        &params.AdminID,
		ResolutionNote:    &note,
	}
	return entry, alert, nil
}

func TestCloseJourneyDefaultsOccurredAt(t *testing.T) {
	repo := &fakeAdjustmentsRepo{}
	log := logger.New("test")
	svc := New(repo, events.NewInMemoryBus(log), log)

	fixed := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	resp, err := svc.CloseJourney(context.Background(), 10, 50, transport.CloseJourneyRequest{
		AlertID:        7,
		ResolutionNote: "worker forgot to clock out",
	})
	if err != nil {
		t.Fatalf("close journey failed: %v", err)
	}

	if !repo.lastParams.OccurredAt.Equal(fixed) {
		t.Fatalf("expected default occurred_at %s, got %s", fixed, repo.lastParams.OccurredAt)
	}
	if resp.Entry.Kind != "OUT" {
		t.Fatalf("expected OUT entry, got %s", resp.Entry.Kind)
	}
	if resp.Entry.AmendmentReason == nil || *resp.Entry.AmendmentReason != repository.AmendmentReasonCloseJourney {
		t.Fatalf("expected amendment reason set, got %+v", resp.Entry.AmendmentReason)
	}
	if resp.Alert.ResolvedAt == nil {
		t.Fatal("expected resolved alert in response")
	}
}

func TestCloseJourneyHonorsExplicitTimestamp(t *testing.T) {
	repo := &fakeAdjustmentsRepo{}
	log := logger.New("test")
	svc := New(repo, events.NewInMemoryBus(log), log)

	explicit := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	_, err := svc.CloseJourney(context.Background(), 10, 50, transport.CloseJourneyRequest{
		AlertID:        7,
		OccurredAt:     &explicit,
		ResolutionNote: "closing at reported end of shift",
	})
	if err != nil {
		t.Fatalf("close journey failed: %v", err)
	}

	if !repo.lastParams.OccurredAt.Equal(explicit) {
		t.Fatalf("expected occurred_at %s, got %s", explicit, repo.lastParams.OccurredAt)
	}
}
