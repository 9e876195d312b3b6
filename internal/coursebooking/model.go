package coursebooking

import "time"

type Status string

const (
	StatusPending   Status = "pendiente"
	StatusApproved  Status = "aprobada"
	StatusRejected  Status = "rechazada"
	StatusCancelled Status = "cancelada"
)

// CourseBooking is an organizer's request to hold a course in a venue.
type CourseBooking struct {
	ID           int64      `db:"id" json:"id"`
	CursoID      int64      `db:"curso_id" json:"curso_id"`
	RecintoID    int64      `db:"recinto_id" json:"recinto_id"`
	OrganizerUID int        `db:"organizer_uid" json:"organizer_uid"`
	StartAt      time.Time  `db:"start_at" json:"start_at"`
	EndAt        time.Time  `db:"end_at" json:"end_at"`
	Status       Status     `db:"status" json:"status"`
	Observations string     `db:"observations" json:"observations"`
	WorkerUID    *int       `db:"worker_uid" json:"worker_uid,omitempty"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type CourseBookingWithDetails struct {
	CourseBooking
	CursoName   string `db:"curso_name" json:"curso_name"`
	RecintoName string `db:"recinto_name" json:"recinto_name"`
}

type RequestInput struct {
	CursoID   int64     `json:"curso_id" validate:"required,gt=0"`
	RecintoID int64     `json:"recinto_id" validate:"required,gt=0"`
	StartAt   time.Time `json:"start_at" validate:"required"`
	EndAt     time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
}

type Decision struct {
	Status       Status `json:"status" validate:"required,oneof=aprobada rechazada cancelada"`
	Observations string `json:"observations" validate:"max=500"`
}

// Decided describes a review that changed a course booking's status.
type Decided struct {
	CourseBookingID int64     `json:"curso_reserva_id"`
	CursoID         int64     `json:"curso_id"`
	RecintoID       int64     `json:"recinto_id"`
	OrganizerUID    int       `json:"organizer_uid"`
	WorkerUID       int       `json:"worker_uid"`
	PreviousStatus  Status    `json:"previous_status"`
	Status          Status    `json:"status"`
	Observations    string    `json:"observations"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
}
