package booking

import "time"

const (
	StatusActive    = "activa"
	StatusCancelled = "cancelada"
)

// Booking is a citizen reserva of a venue for [StartAt, EndAt).
type Booking struct {
	ID        int64     `db:"id" json:"id"`
	RecintoID int64     `db:"recinto_id" json:"recinto_id"`
	UserID    *int      `db:"user_id" json:"user_id,omitempty"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	Status    string    `db:"status" json:"status"`
	Paid      bool      `db:"paid" json:"paid"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BookingWithDetails struct {
	Booking
	RecintoName string `db:"recinto_name" json:"recinto_name"`
	UserName    string `db:"user_name" json:"user_name"`
	UserEmail   string `db:"user_email" json:"user_email"`
}

type CreateRequest struct {
	RecintoID int64     `json:"recinto_id" validate:"required,gt=0"`
	StartAt   time.Time `json:"start_at" validate:"required"`
	EndAt     time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
}

type DayStats struct {
	Day       time.Time `db:"day" json:"day"`
	Total     int       `db:"total" json:"total"`
	Cancelled int       `db:"cancelled" json:"cancelled"`
	Paid      int       `db:"paid" json:"paid"`
}

type StatsResponse struct {
	From time.Time  `json:"from"`
	To   time.Time  `json:"to"`
	Data []DayStats `json:"data"`
}
