package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock_backend/platform/apperr"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

const orderColumns = `id, title, description, location_text, expected_start,
	expected_duration_hours, status, created_by, created_at, closed_at, closed_by`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed service order repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, params CreateParams) (ServiceOrder, error) {
	query := fmt.Sprintf(`
		INSERT INTO service_orders
			(title, description, location_text, expected_start, expected_duration_hours, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, orderColumns)

	row := r.pool.QueryRow(ctx, query,
		params.Title, params.Description, params.LocationText,
		params.ExpectedStart, params.ExpectedDurationHours, params.CreatedBy)

	order, err := scanOrder(row)
	if err != nil {
		return ServiceOrder{}, apperr.Wrap(apperr.KindInternal, "failed to create service order", err)
	}
	return order, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (ServiceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE id = $1`, orderColumns)

	row := r.pool.QueryRow(ctx, query, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ServiceOrder{}, apperr.NotFound("service order not found")
		}
		return ServiceOrder{}, apperr.Wrap(apperr.KindInternal, "failed to query service order", err)
	}
	return order, nil
}

func (r *postgresRepository) ListAll(ctx context.Context, status string) ([]ServiceOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_orders`, orderColumns)
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list service orders", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *postgresRepository) ListOpenAssigned(ctx context.Context, userID int64) ([]ServiceOrder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM service_orders so
		JOIN service_order_assignments soa ON soa.service_order_id = so.id
		WHERE soa.user_id = $1 AND so.status = $2
		ORDER BY so.expected_start`, prefixColumns("so"))

	rows, err := r.pool.Query(ctx, query, userID, StatusOpen)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list assigned service orders", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *postgresRepository) Assign(ctx context.Context, orderID, userID int64) error {
	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != StatusOpen {
		return apperr.Conflict("service order is closed")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO service_order_assignments (service_order_id, user_id)
		VALUES ($1, $2)`, orderID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolationCode:
				return apperr.Conflict("user is already assigned to this service order")
			case foreignKeyViolationCode:
				return apperr.NotFound("user not found")
			}
		}
		return apperr.Wrap(apperr.KindInternal, "failed to assign service order", err)
	}
	return nil
}

func (r *postgresRepository) Close(ctx context.Context, orderID, closedBy int64) (ServiceOrder, error) {
	query := fmt.Sprintf(`
		UPDATE service_orders
		SET status = $2, closed_at = now(), closed_by = $3
		WHERE id = $1 AND status = $4
		RETURNING %s`, orderColumns)

	row := r.pool.QueryRow(ctx, query, orderID, StatusClosed, closedBy, StatusOpen)
	order, err := scanOrder(row)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ServiceOrder{}, apperr.Wrap(apperr.KindInternal, "failed to close service order", err)
	}

	if _, getErr := r.GetByID(ctx, orderID); getErr != nil {
		return ServiceOrder{}, getErr
	}
	return ServiceOrder{}, apperr.Conflict("service order is already closed")
}

func (r *postgresRepository) IsAssignedOpen(ctx context.Context, userID, orderID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM service_orders so
			JOIN service_order_assignments soa ON soa.service_order_id = so.id
			WHERE so.id = $1 AND soa.user_id = $2 AND so.status = $3
		)`, orderID, userID, StatusOpen).Scan(&exists)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to check service order assignment", err)
	}
	return exists, nil
}

func scanOrder(row pgx.Row) (ServiceOrder, error) {
	var o ServiceOrder
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.LocationText,
		&o.ExpectedStart, &o.ExpectedDurationHours, &o.Status, &o.CreatedBy,
		&o.CreatedAt, &o.ClosedAt, &o.ClosedBy)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]ServiceOrder, error) {
	orders := []ServiceOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan service order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to iterate service orders", err)
	}
	return orders, nil
}

func prefixColumns(alias string) string {
	return fmt.Sprintf(`%s.id, %s.title, %s.description, %s.location_text,
		%s.expected_start, %s.expected_duration_hours, %s.status, %s.created_by,
		%s.created_at, %s.closed_at, %s.closed_by`,
		alias, alias, alias, alias, alias, alias, alias, alias, alias, alias, alias)
}
