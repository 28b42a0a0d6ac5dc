package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock_backend/platform/apperr"
)

const entryColumns = `id, user_id, kind, occurred_at, latitude, longitude, service_order_id,
		note, amended_by, amended_at, amendment_reason, source_alert_id, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new clock ledger repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// AppendClock appends a clock entry inside a transaction. The user row is
// locked first, which serializes concurrent clock requests for the same user
// (including the first-entry case, where there is no ledger row to lock), so
// the guard always sees the true last entry.
func (r *Repo) AppendClock(ctx context.Context, params CreateEntryParams, guard TransitionGuard) (Entry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("begin append clock: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedUserID int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, params.UserID).Scan(&lockedUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, apperr.NotFound("user not found")
		}
		return Entry{}, fmt.Errorf("lock user for clock append: %w", err)
	}

	last, err := lastEntryTx(ctx, tx, params.UserID)
	if err != nil {
		return Entry{}, err
	}

	if err := guard(last); err != nil {
		return Entry{}, err
	}

	query := `
		INSERT INTO time_entries (user_id, kind, occurred_at, latitude, longitude, service_order_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + entryColumns

	entry, err := scanEntry(tx.QueryRow(ctx, query,
		params.UserID, params.Kind, params.OccurredAt, params.Latitude, params.Longitude, params.ServiceOrderID,
	))
	if err != nil {
		return Entry{}, fmt.Errorf("insert clock entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, fmt.Errorf("commit clock append: %w", err)
	}

	return entry, nil
}

// LastEntry returns the most recent entry for a user, nil when none exists.
func (r *Repo) LastEntry(ctx context.Context, userID int64) (*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT 1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last entry: %w", err)
	}

	return &entry, nil
}

// ListByUser returns a user's entries within the occurred_at range, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries by user: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return results, nil
}

// ListAllWithUser returns all users' entries within the occurred_at range,
// joined with worker names, newest first.
func (r *Repo) ListAllWithUser(ctx context.Context, from, to time.Time) ([]EntryWithUser, error) {
	query := `
		SELECT te.id, te.user_id, te.kind, te.occurred_at, te.latitude, te.longitude, te.service_order_id,
			te.note, te.amended_by, te.amended_at, te.amendment_reason, te.source_alert_id, te.created_at,
			u.name AS user_name
		FROM time_entries te
		JOIN users u ON u.id = te.user_id
		WHERE te.occurred_at >= $1 AND te.occurred_at <= $2
		ORDER BY te.occurred_at DESC, te.id DESC`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	defer rows.Close()

	var results []EntryWithUser
	for rows.Next() {
		var item EntryWithUser
		err := rows.Scan(
			&item.ID, &item.UserID, &item.Kind, &item.OccurredAt, &item.Latitude, &item.Longitude, &item.ServiceOrderID,
			&item.Note, &item.AmendedBy, &item.AmendedAt, &item.AmendmentReason, &item.SourceAlertID, &item.CreatedAt,
			&item.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry with user: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries with user: %w", err)
	}

	return results, nil
}

// UserIDsWithOpenJourney returns the users whose most recent entry is IN.
func (r *Repo) UserIDsWithOpenJourney(ctx context.Context) ([]int64, error) {
	query := `
		SELECT user_id FROM (
			SELECT DISTINCT ON (user_id) user_id, kind
			FROM time_entries
			ORDER BY user_id, id DESC
		) latest
		WHERE kind = 'IN'`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open journeys: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan open journey user: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open journeys: %w", err)
	}

	return ids, nil
}

func lastEntryTx(ctx context.Context, tx pgx.Tx, userID int64) (*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT 1`

	entry, err := scanEntry(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last entry in tx: %w", err)
	}

	return &entry, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.UserID, &e.Kind, &e.OccurredAt, &e.Latitude, &e.Longitude, &e.ServiceOrderID,
		&e.Note, &e.AmendedBy, &e.AmendedAt, &e.AmendmentReason, &e.SourceAlertID, &e.CreatedAt,
	)
	return e, err
}
