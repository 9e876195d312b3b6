package coursebooking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const returningColumns = `id, curso_id, recinto_id, organizer_uid, start_at, end_at, status, observations, worker_uid, reviewed_at, created_at`

const detailsSelect = `
	SELECT cr.id, cr.curso_id, cr.recinto_id, cr.organizer_uid, cr.start_at, cr.end_at, cr.status,
	       cr.observations, cr.worker_uid, cr.reviewed_at, cr.created_at,
	       c.name AS curso_name, r.name AS recinto_name
	FROM curso_reservas cr
	JOIN cursos c ON c.id = cr.curso_id
	JOIN recintos r ON r.id = cr.recinto_id
`

func (r *repository) Insert(ctx context.Context, q sqlx.QueryerContext, organizerUID int, in RequestInput) (*CourseBooking, error) {
	query := `
		INSERT INTO curso_reservas (curso_id, recinto_id, organizer_uid, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, $5, 'pendiente')
		RETURNING ` + returningColumns

	var cb CourseBooking
	if err := sqlx.GetContext(ctx, q, &cb, query, in.CursoID, in.RecintoID, organizerUID, in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	return &cb, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*CourseBooking, error) {
	query := `SELECT ` + returningColumns + ` FROM curso_reservas WHERE id = $1`

	var cb CourseBooking
	err := r.db.GetContext(ctx, &cb, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cb, nil
}

func (r *repository) UpdateStatus(ctx context.Context, q sqlx.QueryerContext, id int64, from Status, d Decision, workerUID int) (*CourseBooking, error) {
	if q == nil {
		q = r.db
	}

	query := `
		UPDATE curso_reservas
		SET status = $1, observations = $2, worker_uid = $3, reviewed_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING ` + returningColumns

	var cb CourseBooking
	err := sqlx.GetContext(ctx, q, &cb, query, d.Status, d.Observations, workerUID, id, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return &cb, nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]CourseBookingWithDetails, error) {
	out := []CourseBookingWithDetails{}
	err := r.db.SelectContext(ctx, &out, detailsSelect+` WHERE cr.status = $1 ORDER BY cr.start_at`, status)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListByOrganizer(ctx context.Context, organizerUID int) ([]CourseBookingWithDetails, error) {
	out := []CourseBookingWithDetails{}
	err := r.db.SelectContext(ctx, &out, detailsSelect+` WHERE cr.organizer_uid = $1 ORDER BY cr.start_at DESC`, organizerUID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
