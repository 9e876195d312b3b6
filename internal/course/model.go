package course

import "time"

type Course struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	OrganizerUID int       `db:"organizer_uid" json:"organizer_uid"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Enrollment is an inscripcion of a citizen in a course.
type Enrollment struct {
	ID        int64     `db:"id" json:"id"`
	CursoID   int64     `db:"curso_id" json:"curso_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Status    string    `db:"status" json:"status"`
	Paid      bool      `db:"paid" json:"paid"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type EnrollmentWithCourse struct {
	Enrollment
	CursoName  string `db:"curso_name" json:"curso_name"`
	PriceCents int64  `db:"price_cents" json:"price_cents"`
}

type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
}
