package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock_backend/platform/apperr"
)

const uniqueViolationCode = "23505"

const alertColumns = `id, kind, user_id, triggering_entry_id, severity, note,
	created_at, resolved_at, resolved_by, resolution_note`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed alert repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) FindUnresolved(ctx context.Context, kind AlertKind, userID, entryID int64) (*Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE kind = $1 AND user_id = $2 AND triggering_entry_id = $3
		  AND resolved_at IS NULL`, alertColumns)

	row := r.pool.QueryRow(ctx, query, kind, userID, entryID)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to query alert", err)
	}
	return &alert, nil
}

func (r *postgresRepository) Create(ctx context.Context, params CreateAlertParams) (Alert, error) {
	query := fmt.Sprintf(`
		INSERT INTO alerts (kind, user_id, triggering_entry_id, severity, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, alertColumns)

	row := r.pool.QueryRow(ctx, query,
		params.Kind, params.UserID, params.TriggeringEntryID, params.Severity, params.Note)

	alert, err := scanAlert(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Alert{}, apperr.Conflict("an open alert already exists for this entry")
		}
		return Alert{}, apperr.Wrap(apperr.KindInternal, "failed to create alert", err)
	}
	return alert, nil
}

func (r *postgresRepository) UpdateSeverity(ctx context.Context, id int64, severity int16, note string) (Alert, error) {
	query := fmt.Sprintf(`
		UPDATE alerts
		SET severity = $2, note = $3
		WHERE id = $1 AND resolved_at IS NULL
		RETURNING %s`, alertColumns)

	row := r.pool.QueryRow(ctx, query, id, severity, note)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Alert{}, apperr.Conflict("alert is no longer open")
		}
		return Alert{}, apperr.Wrap(apperr.KindInternal, "failed to update alert severity", err)
	}
	return alert, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE id = $1`, alertColumns)

	row := r.pool.QueryRow(ctx, query, id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Alert{}, apperr.NotFound("alert not found")
		}
		return Alert{}, apperr.Wrap(apperr.KindInternal, "failed to query alert", err)
	}
	return alert, nil
}

func (r *postgresRepository) Resolve(ctx context.Context, id, resolvedBy int64, resolutionNote string) (Alert, error) {
	query := fmt.Sprintf(`
		UPDATE alerts
		SET resolved_at = now(), resolved_by = $2, resolution_note = $3
		WHERE id = $1 AND resolved_at IS NULL
		RETURNING %s`, alertColumns)

	row := r.pool.QueryRow(ctx, query, id, resolvedBy, resolutionNote)
	alert, err := scanAlert(row)
	if err == nil {
		return alert, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, apperr.Wrap(apperr.KindInternal, "failed to resolve alert", err)
	}

	// Zero rows means either a missing alert or one that was already
	// resolved; distinguish for the caller.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return Alert{}, getErr
	}
	return Alert{}, apperr.Conflict("alert is already resolved")
}

func (r *postgresRepository) List(ctx context.Context, params ListParams) ([]AlertWithUser, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argPos := 1

	switch params.Status {
	case "open":
		conditions = append(conditions, "a.resolved_at IS NULL")
	case "resolved":
		conditions = append(conditions, "a.resolved_at IS NOT NULL")
	}
	if params.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", argPos))
		args = append(args, *params.UserID)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM alerts a WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count alerts", err)
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.kind, a.user_id, a.triggering_entry_id, a.severity,
		       a.note, a.created_at, a.resolved_at, a.resolved_by,
		       a.resolution_note, u.name
		FROM alerts a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.id DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list alerts", err)
	}
	defer rows.Close()

	alerts := []AlertWithUser{}
	for rows.Next() {
		var a AlertWithUser
		if err := rows.Scan(&a.ID, &a.Kind, &a.UserID, &a.TriggeringEntryID,
			&a.Severity, &a.Note, &a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy,
			&a.ResolutionNote, &a.UserName); err != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to scan alert", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to iterate alerts", err)
	}

	return alerts, total, nil
}

func scanAlert(row pgx.Row) (Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.Kind, &a.UserID, &a.TriggeringEntryID, &a.Severity,
		&a.Note, &a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy, &a.ResolutionNote)
	return a, err
}
