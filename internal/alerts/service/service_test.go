package service

import (
	"context"
	"testing"
	"time"

	"timeclock_backend/internal/alerts/repository"
	"timeclock_backend/internal/alerts/transport"
	"timeclock_backend/internal/events"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/apperr"
	"timeclock_backend/platform/logger"
)

type fakeAlertRepo struct {
	alerts map[int64]*repository.Alert
	nextID int64

	// createConflicts makes the next N creates fail with a conflict, as the
	// unique index does when a concurrent evaluation wins the insert race.
	createConflicts int
	// onConflict runs when a create conflicts, letting tests plant the
	// winner's row before the retry re-reads.
	onConflict func()
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[int64]*repository.Alert{}, nextID: 1}
}

func (f *fakeAlertRepo) FindUnresolved(_ context.Context, kind repository.AlertKind, userID, entryID int64) (*repository.Alert, error) {
	for _, a := range f.alerts {
		if a.Kind == kind && a.UserID == userID && a.TriggeringEntryID == entryID && a.ResolvedAt == nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) Create(_ context.Context, params repository.CreateAlertParams) (repository.Alert, error) {
	if f.createConflicts > 0 {
		f.createConflicts--
		if f.onConflict != nil {
			f.onConflict()
		}
		return repository.Alert{}, apperr.Conflict("an open alert already exists for this entry")
	}

	alert := repository.Alert{
		ID:                f.nextID,
		Kind:              params.Kind,
		UserID:            params.UserID,
		TriggeringEntryID: params.TriggeringEntryID,
		Severity:          params.Severity,
		Note:              params.Note,
		CreatedAt:         time.Now(),
	}
	f.nextID++
	f.alerts[alert.ID] = &alert
	copied := alert
	return copied, nil
}

func (f *fakeAlertRepo) UpdateSeverity(_ context.Context, id int64, severity int16, note string) (repository.Alert, error) {
	a, ok := f.alerts[id]
	if !ok || a.ResolvedAt != nil {
		return repository.Alert{}, apperr.Conflict("alert is no longer open")
	}
	a.Severity = severity
	a.Note = note
	copied := *a
	return copied, nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, id int64) (repository.Alert, error) {
	a, ok := f.alerts[id]
	if !ok {
		return repository.Alert{}, apperr.NotFound("alert not found")
	}
	copied := *a
	return copied, nil
}

func (f *fakeAlertRepo) Resolve(_ context.Context, id, resolvedBy int64, note string) (repository.Alert, error) {
	a, ok := f.alerts[id]
	if !ok {
		return repository.Alert{}, apperr.NotFound("alert not found")
	}
	if a.ResolvedAt != nil {
		return repository.Alert{}, apperr.Conflict("alert is already resolved")
	}
	now := time.Now()
	a.ResolvedAt = &now
	a.ResolvedBy = &resolvedBy
	a.ResolutionNote = &note
	copied := *a
	return copied, nil
}

func (f *fakeAlertRepo) List(_ context.Context, params repository.ListParams) ([]repository.AlertWithUser, int, error) {
	var out []repository.AlertWithUser
	for _, a := range f.alerts {
		if params.Status == "open" && a.ResolvedAt != nil {
			continue
		}
		if params.Status == "resolved" && a.ResolvedAt == nil {
			continue
		}
		out = append(out, repository.AlertWithUser{Alert: *a, UserName: "worker"})
	}
	return out, len(out), nil
}

type fakeEntryReader struct {
	last *timeclockrepo.Entry
}

func (f *fakeEntryReader) LastEntry(_ context.Context, _ int64) (*timeclockrepo.Entry, error) {
	return f.last, nil
}

func inEntry(id int64, openFor time.Duration, now time.Time) *timeclockrepo.Entry {
	return &timeclockrepo.Entry{
		ID:         id,
		UserID:     1,
		Kind:       timeclockrepo.EntryKindIn,
		OccurredAt: now.Add(-openFor),
	}
}

func newTestEngine(repo repository.Repository, entries EntryReader) *Service {
	log := logger.New("test")
	return New(repo, entries, events.NewInMemoryBus(log), log)
}

func TestEvaluateNoJourneyNoAlert(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()

	svc := newTestEngine(repo, &fakeEntryReader{last: nil})
	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result != nil {
		t.Fatalf("empty ledger should produce no inconsistency, got %+v", result)
	}

	out := inEntry(1, 20*time.Hour, now)
	out.Kind = timeclockrepo.EntryKindOut
	svc = newTestEngine(repo, &fakeEntryReader{last: out})
	result, err = svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result != nil {
		t.Fatalf("closed journey should produce no inconsistency, got %+v", result)
	}
}

func TestEvaluateWithinLimitNoAlert(t *testing.T) {
	now := time.Now()
	svc := newTestEngine(newFakeAlertRepo(), &fakeEntryReader{last: inEntry(1, 11*time.Hour+59*time.Minute, now)})

	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result != nil {
		t.Fatalf("journey within limit should produce no inconsistency, got %+v", result)
	}
}

func TestEvaluateExactlyAtLimitFlags(t *testing.T) {
	now := time.Now()
	svc := newTestEngine(newFakeAlertRepo(), &fakeEntryReader{last: inEntry(1, 12*time.Hour, now)})

	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result == nil || result.Severity != int(repository.SeverityExceeded) {
		t.Fatalf("journey at exactly the limit should flag severity 1, got %+v", result)
	}
}

func TestEvaluateExactlyAtToleranceIsSeverityTwo(t *testing.T) {
	now := time.Now()
	svc := newTestEngine(newFakeAlertRepo(), &fakeEntryReader{last: inEntry(1, 13*time.Hour, now)})

	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result == nil || result.Severity != int(repository.SeverityTolerance) {
		t.Fatalf("journey at exactly the tolerance should flag severity 2, got %+v", result)
	}
}

func TestEvaluatePastLimitCreatesSeverityOne(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	svc := newTestEngine(repo, &fakeEntryReader{last: inEntry(1, 12*time.Hour+30*time.Minute, now)})

	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected an inconsistency")
	}
	if !result.CreatedAlert {
		t.Fatal("expected a newly created alert")
	}
	if result.Severity != int(repository.SeverityExceeded) {
		t.Fatalf("expected severity 1, got %d", result.Severity)
	}
	if result.ElapsedHours != 12.5 {
		t.Fatalf("expected elapsed 12.5, got %v", result.ElapsedHours)
	}
}

func TestEvaluatePastToleranceCreatesSeverityTwo(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	svc := newTestEngine(repo, &fakeEntryReader{last: inEntry(1, 14*time.Hour, now)})

	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result == nil || result.Severity != int(repository.SeverityTolerance) {
		t.Fatalf("expected severity 2, got %+v", result)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	svc := newTestEngine(repo, &fakeEntryReader{last: inEntry(1, 12*time.Hour+30*time.Minute, now)})
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, 1, now)
	if err != nil {
		t.Fatalf("first evaluate failed: %v", err)
	}

	second, err := svc.Evaluate(ctx, 1, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	if second.CreatedAlert {
		t.Fatal("second evaluation must not create a new alert")
	}
	if second.AlertID != first.AlertID {
		t.Fatalf("expected same alert %d, got %d", first.AlertID, second.AlertID)
	}
	if len(repo.alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(repo.alerts))
	}
}

func TestEvaluateEscalatesOpenAlert(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	reader := &fakeEntryReader{last: inEntry(1, 12*time.Hour+30*time.Minute, now)}
	svc := newTestEngine(repo, reader)
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, 1, now)
	if err != nil {
		t.Fatalf("first evaluate failed: %v", err)
	}
	if first.Severity != int(repository.SeverityExceeded) {
		t.Fatalf("expected severity 1, got %d", first.Severity)
	}

	later := now.Add(2 * time.Hour)
	second, err := svc.Evaluate(ctx, 1, later)
	if err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	if second.AlertID != first.AlertID {
		t.Fatalf("escalation must reuse alert %d, got %d", first.AlertID, second.AlertID)
	}
	if second.Severity != int(repository.SeverityTolerance) {
		t.Fatalf("expected escalation to severity 2, got %d", second.Severity)
	}
	if second.CreatedAlert {
		t.Fatal("escalation must not report a new alert")
	}
}

func TestEvaluateSeverityNeverDecreasesAsTimeGrows(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	svc := newTestEngine(repo, &fakeEntryReader{last: inEntry(1, 13*time.Hour, now)})
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, 1, now)
	if err != nil {
		t.Fatalf("first evaluate failed: %v", err)
	}
	if first.Severity != int(repository.SeverityTolerance) {
		t.Fatalf("expected severity 2, got %d", first.Severity)
	}

	for _, later := range []time.Duration{time.Minute, time.Hour, 6 * time.Hour} {
		result, err := svc.Evaluate(ctx, 1, now.Add(later))
		if err != nil {
			t.Fatalf("evaluate at +%s failed: %v", later, err)
		}
		if result.Severity < first.Severity {
			t.Fatalf("severity decreased at +%s: %d", later, result.Severity)
		}
	}
}

func TestEvaluateNewJourneyGetsNewAlert(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	reader := &fakeEntryReader{last: inEntry(1, 13*time.Hour, now)}
	svc := newTestEngine(repo, reader)
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, 1, now)
	if err != nil {
		t.Fatalf("first evaluate failed: %v", err)
	}

	// The stuck journey was closed and a new one opened and got stuck too.
	reader.last = inEntry(9, 13*time.Hour, now)
	second, err := svc.Evaluate(ctx, 1, now)
	if err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	if !second.CreatedAlert {
		t.Fatal("a different triggering entry must open a new alert")
	}
	if second.AlertID == first.AlertID {
		t.Fatal("expected a distinct alert per triggering entry")
	}
}

func TestEvaluateConvergesAfterCreateRace(t *testing.T) {
	now := time.Now()
	repo := newFakeAlertRepo()
	repo.createConflicts = 1
	repo.onConflict = func() {
		// The concurrent winner's row appears before the loser retries.
		winner := repository.Alert{
			ID:                99,
			Kind:              repository.KindJourneyInconsistent,
			UserID:            1,
			TriggeringEntryID: 1,
			Severity:          repository.SeverityExceeded,
			Note:              "journey inconsistent",
			CreatedAt:         now,
		}
		repo.alerts[winner.ID] = &winner
	}

	svc := newTestEngine(repo, &fakeEntryReader{last: inEntry(1, 12*time.Hour+30*time.Minute, now)})
	result, err := svc.Evaluate(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if result.CreatedAlert {
		t.Fatal("race loser must converge on the winner's alert")
	}
	if result.AlertID != 99 {
		t.Fatalf("expected winner's alert 99, got %d", result.AlertID)
	}
}

func TestResolveAlert(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newTestEngine(repo, &fakeEntryReader{})
	ctx := context.Background()

	created, err := repo.Create(ctx, repository.CreateAlertParams{
		Kind:              repository.KindJourneyInconsistent,
		UserID:            1,
		TriggeringEntryID: 3,
		Severity:          repository.SeverityExceeded,
		Note:              "journey inconsistent",
	})
	if err != nil {
		t.Fatalf("seed alert failed: %v", err)
	}

	resolved, err := svc.Resolve(ctx, created.ID, 50, transport.ResolveAlertRequest{ResolutionNote: "worker forgot to clock out"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Alert.ResolvedAt == nil || resolved.Alert.ResolvedBy == nil || *resolved.Alert.ResolvedBy != 50 {
		t.Fatalf("expected resolution fields populated, got %+v", resolved.Alert)
	}

	_, err = svc.Resolve(ctx, created.ID, 50, transport.ResolveAlertRequest{ResolutionNote: "again"})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("double resolve should conflict, got %v", err)
	}
}

func TestResolveMissingAlertIsNotFound(t *testing.T) {
	svc := newTestEngine(newFakeAlertRepo(), &fakeEntryReader{})

	_, err := svc.Resolve(context.Background(), 123, 50, transport.ResolveAlertRequest{ResolutionNote: "nothing here"})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
