package service

import (
	"testing"
	"time"

	"timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/apperr"
)

func entry(kind repository.EntryKind) *repository.Entry {
	return &repository.Entry{
		ID:         1,
		UserID:     10,
		Kind:       kind,
		OccurredAt: time.Now(),
	}
}

func TestIsInJourney(t *testing.T) {
	if IsInJourney(nil) {
		t.Fatal("empty ledger should not be in a journey")
	}
	if !IsInJourney(entry(repository.EntryKindIn)) {
		t.Fatal("last IN should be in a journey")
	}
	if IsInJourney(entry(repository.EntryKindOut)) {
		t.Fatal("last OUT should not be in a journey")
	}
}

func TestValidateTransitionAllowed(t *testing.T) {
	if err := ValidateTransition(repository.EntryKindIn, nil); err != nil {
		t.Fatalf("IN on empty ledger should be allowed, got %v", err)
	}
	if err := ValidateTransition(repository.EntryKindIn, entry(repository.EntryKindOut)); err != nil {
		t.Fatalf("IN after OUT should be allowed, got %v", err)
	}
	if err := ValidateTransition(repository.EntryKindOut, entry(repository.EntryKindIn)); err != nil {
		t.Fatalf("OUT after IN should be allowed, got %v", err)
	}
}

func TestValidateTransitionRejected(t *testing.T) {
	err := ValidateTransition(repository.EntryKindIn, entry(repository.EntryKindIn))
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("double IN should be a conflict, got %v", err)
	}

	err = ValidateTransition(repository.EntryKindOut, entry(repository.EntryKindOut))
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("double OUT should be a conflict, got %v", err)
	}

	err = ValidateTransition(repository.EntryKindOut, nil)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("OUT on empty ledger should be a conflict, got %v", err)
	}
}
