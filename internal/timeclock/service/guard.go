package service

import (
	"timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/apperr"
)

// IsInJourney derives the journey state from the last ledger entry: a user is
// in a journey exactly when the last entry exists and is IN.
func IsInJourney(last *repository.Entry) bool {
	return last != nil && last.Kind == repository.EntryKindIn
}

// ValidateTransition enforces the two-state clock machine: Closed --IN-->
// Open and Open --OUT--> Closed. Any other requested transition is a
// conflict naming the offending state.
func ValidateTransition(kind repository.EntryKind, last *repository.Entry) error {
	inJourney := IsInJourney(last)

	if kind == repository.EntryKindIn && inJourney {
		return apperr.Conflict("user is already in a journey")
	}
	if kind == repository.EntryKindOut && !inJourney {
		return apperr.Conflict("user is not in a journey")
	}

	return nil
}
