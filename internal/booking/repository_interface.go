package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Insert runs on q so it can share the venue transaction of the conflict check.
	Insert(ctx context.Context, q sqlx.QueryerContext, recintoID int64, userID int, startAt, endAt time.Time) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	GetDetails(ctx context.Context, id int64) (*BookingWithDetails, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	GetVenueBookings(ctx context.Context, recintoID int64) ([]BookingWithDetails, error)
	StatsByDay(ctx context.Context, from, to time.Time) ([]DayStats, error)
}
