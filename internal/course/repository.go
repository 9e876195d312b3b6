package course

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, organizerUID int, req CreateCourseRequest) (*Course, error) {
	query := `
		INSERT INTO cursos (name, description, organizer_uid, price_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, organizer_uid, price_cents, created_at
	`

	var c Course
	if err := r.db.GetContext(ctx, &c, query, req.Name, req.Description, organizerUID, req.PriceCents); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Course, error) {
	query := `
		SELECT id, name, description, organizer_uid, price_cents, created_at
		FROM cursos
		ORDER BY created_at DESC
	`

	courses := []Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Course, error) {
	query := `
		SELECT id, name, description, organizer_uid, price_cents, created_at
		FROM cursos
		WHERE id = $1
	`

	var c Course
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Enroll(ctx context.Context, cursoID int64, userID int) (*Enrollment, error) {
	query := `
		INSERT INTO inscripciones (curso_id, user_id)
		VALUES ($1, $2)
		RETURNING id, curso_id, user_id, status, paid, created_at
	`

	var e Enrollment
	err := r.db.GetContext(ctx, &e, query, cursoID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) GetUserEnrollments(ctx context.Context, userID int) ([]EnrollmentWithCourse, error) {
	query := `
		SELECT i.id, i.curso_id, i.user_id, i.status, i.paid, i.created_at,
		       c.name AS curso_name, c.price_cents
		FROM inscripciones i
		JOIN cursos c ON c.id = i.curso_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
	`

	out := []EnrollmentWithCourse{}
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, err
	}
	return out, nil
}
