package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	alertsrepo "timeclock_backend/internal/alerts/repository"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/apperr"
)

// AmendmentReasonCloseJourney is written on every compensating OUT entry.
const AmendmentReasonCloseJourney = "administrator adjustment - closed stuck journey"

// CloseJourneyParams contains data for the compensation transaction.
type CloseJourneyParams struct {
	UserID         int64
	AlertID        int64
	AdminID        int64
	OccurredAt     time.Time
	Latitude       *float64
	Longitude      *float64
	ResolutionNote string
}

// Repository performs administrator ledger adjustments.
type Repository interface {
	// CloseJourney appends a compensating OUT entry and resolves the alert in
	// a single transaction. Both happen or neither does.
	CloseJourney(ctx context.Context, params CloseJourneyParams) (timeclockrepo.Entry, alertsrepo.Alert, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed adjustments repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CloseJourney(ctx context.Context, params CloseJourneyParams) (timeclockrepo.Entry, alertsrepo.Alert, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, fmt.Errorf("begin close journey: %w", err)
	}
	defer tx.Rollback(ctx)

	// Same lock order as the clock append path so concurrent clock requests
	// and compensations for one user serialize instead of deadlocking.
	var lockedUserID int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, params.UserID).Scan(&lockedUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeclockrepo.Entry{}, alertsrepo.Alert{}, apperr.NotFound("user not found")
		}
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, fmt.Errorf("lock user for close journey: %w", err)
	}

	alert, err := lockAlert(ctx, tx, params.AlertID)
	if err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, err
	}

	last, err := lastEntryTx(ctx, tx, params.UserID)
	if err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, err
	}

	if err := validateCompensation(params.UserID, alert, last); err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, err
	}

	entry, err := insertCompensatingOut(ctx, tx, params)
	if err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, err
	}

	resolved, err := resolveAlertTx(ctx, tx, params.AlertID, params.AdminID, params.ResolutionNote)
	if err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return timeclockrepo.Entry{}, alertsrepo.Alert{}, fmt.Errorf("commit close journey: %w", err)
	}

	return entry, resolved, nil
}

func lockAlert(ctx context.Context, tx pgx.Tx, alertID int64) (alertsrepo.Alert, error) {
	query := `
		SELECT id, kind, user_id, triggering_entry_id, severity, note,
			created_at, resolved_at, resolved_by, resolution_note
		FROM alerts
		WHERE id = $1
		FOR UPDATE`

	var a alertsrepo.Alert
	err := tx.QueryRow(ctx, query, alertID).Scan(
		&a.ID, &a.Kind, &a.UserID, &a.TriggeringEntryID, &a.Severity, &a.Note,
		&a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy, &a.ResolutionNote,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return alertsrepo.Alert{}, apperr.NotFound("alert not found")
		}
		return alertsrepo.Alert{}, fmt.Errorf("lock alert: %w", err)
	}
	return a, nil
}

func lastEntryTx(ctx context.Context, tx pgx.Tx, userID int64) (*timeclockrepo.Entry, error) {
	query := `
		SELECT id, user_id, kind, occurred_at, latitude, longitude, service_order_id,
			note, amended_by, amended_at, amendment_reason, source_alert_id, created_at
		FROM time_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT 1`

	var e timeclockrepo.Entry
	err := tx.QueryRow(ctx, query, userID).Scan(
		&e.ID, &e.UserID, &e.Kind, &e.OccurredAt, &e.Latitude, &e.Longitude, &e.ServiceOrderID,
		&e.Note, &e.AmendedBy, &e.AmendedAt, &e.AmendmentReason, &e.SourceAlertID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last entry for close journey: %w", err)
	}
	return &e, nil
}

func insertCompensatingOut(ctx context.Context, tx pgx.Tx, params CloseJourneyParams) (timeclockrepo.Entry, error) {
	query := `
		INSERT INTO time_entries
			(user_id, kind, occurred_at, latitude, longitude, note,
			 amended_by, amended_at, amendment_reason, source_alert_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8, $9)
		RETURNING id, user_id, kind, occurred_at, latitude, longitude, service_order_id,
			note, amended_by, amended_at, amendment_reason, source_alert_id, created_at`

	var e timeclockrepo.Entry
	err := tx.QueryRow(ctx, query,
		params.UserID, timeclockrepo.EntryKindOut, params.OccurredAt,
		params.Latitude, params.Longitude, params.ResolutionNote,
		params.AdminID, AmendmentReasonCloseJourney, params.AlertID,
	).Scan(
		&e.ID, &e.UserID, &e.Kind, &e.OccurredAt, &e.Latitude, &e.Longitude, &e.ServiceOrderID,
		&e.Note, &e.AmendedBy, &e.AmendedAt, &e.AmendmentReason, &e.SourceAlertID, &e.CreatedAt,
	)
	if err != nil {
		return timeclockrepo.Entry{}, fmt.Errorf("insert compensating entry: %w", err)
	}
	return e, nil
}

func resolveAlertTx(ctx context.Context, tx pgx.Tx, alertID, adminID int64, note string) (alertsrepo.Alert, error) {
	query := `
		UPDATE alerts
		SET resolved_at = now(), resolved_by = $2, resolution_note = $3
		WHERE id = $1 AND resolved_at IS NULL
		RETURNING id, kind, user_id, triggering_entry_id, severity, note,
			created_at, resolved_at, resolved_by, resolution_note`

	var a alertsrepo.Alert
	err := tx.QueryRow(ctx, query, alertID, adminID, note).Scan(
		&a.ID, &a.Kind, &a.UserID, &a.TriggeringEntryID, &a.Severity, &a.Note,
		&a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy, &a.ResolutionNote,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return alertsrepo.Alert{}, apperr.Conflict("alert is already resolved")
		}
		return alertsrepo.Alert{}, fmt.Errorf("resolve alert in close journey: %w", err)
	}
	return a, nil
}
