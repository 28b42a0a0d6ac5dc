package repository

import (
	alertsrepo "timeclock_backend/internal/alerts/repository"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/apperr"
)

// validateCompensation checks that the alert still describes the user's
// current open journey before a compensating OUT entry may be written. All
// checks run against rows locked inside the compensation transaction.
func validateCompensation(userID int64, alert alertsrepo.Alert, last *timeclockrepo.Entry) error {
	if alert.ResolvedAt != nil {
		return apperr.Conflict("alert is already resolved")
	}
	if alert.UserID != userID {
		return apperr.Conflict("alert does not belong to this user")
	}
	if alert.Kind != alertsrepo.KindJourneyInconsistent {
		return apperr.Conflict("alert is not a journey inconsistency alert")
	}
	if last == nil || last.Kind != timeclockrepo.EntryKindIn {
		return apperr.Conflict("journey is not open")
	}
	if last.ID != alert.TriggeringEntryID {
		return apperr.Conflict("alert no longer matches the user's open journey")
	}
	return nil
}
