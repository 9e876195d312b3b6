package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const detailsSelect = `
	SELECT b.id, b.recinto_id, b.user_id, b.start_at, b.end_at, b.status, b.paid, b.created_at,
	       r.name AS recinto_name,
	       COALESCE(u.name, '') AS user_name,
	       COALESCE(u.email, '') AS user_email
	FROM reservas b
	JOIN recintos r ON r.id = b.recinto_id
	LEFT JOIN users u ON u.id = b.user_id
`

func (r *repository) Insert(ctx context.Context, q sqlx.QueryerContext, recintoID int64, userID int, startAt, endAt time.Time) (*Booking, error) {
	query := `
		INSERT INTO reservas (recinto_id, user_id, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, 'activa')
		RETURNING id, recinto_id, user_id, start_at, end_at, status, paid, created_at
	`

	var b Booking
	if err := sqlx.GetContext(ctx, q, &b, query, recintoID, userID, startAt, endAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query := `
		SELECT id, recinto_id, user_id, start_at, end_at, status, paid, created_at
		FROM reservas
		WHERE id = $1
	`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetDetails(ctx context.Context, id int64) (*BookingWithDetails, error) {
	var b BookingWithDetails
	err := r.db.GetContext(ctx, &b, detailsSelect+` WHERE b.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Cancel reports false when the booking was already cancelled.
func (r *repository) Cancel(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE reservas SET status = 'cancelada'
		WHERE id = $1 AND status <> 'cancelada'
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	out := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &out, detailsSelect+` WHERE b.user_id = $1 ORDER BY b.start_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetVenueBookings(ctx context.Context, recintoID int64) ([]BookingWithDetails, error) {
	out := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &out, detailsSelect+` WHERE b.recinto_id = $1 ORDER BY b.start_at`, recintoID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) StatsByDay(ctx context.Context, from, to time.Time) ([]DayStats, error) {
	query := `
		SELECT date_trunc('day', start_at) AS day,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'cancelada') AS cancelled,
		       COUNT(*) FILTER (WHERE paid) AS paid
		FROM reservas
		WHERE start_at >= $1 AND start_at < $2
		GROUP BY day
		ORDER BY day
	`

	out := []DayStats{}
	if err := r.db.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, err
	}
	return out, nil
}
