package coursebooking

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, q sqlx.QueryerContext, organizerUID int, in RequestInput) (*CourseBooking, error)
	GetByID(ctx context.Context, id int64) (*CourseBooking, error)
	// UpdateStatus applies a review only while the booking still has status from.
	UpdateStatus(ctx context.Context, q sqlx.QueryerContext, id int64, from Status, d Decision, workerUID int) (*CourseBooking, error)
	ListByStatus(ctx context.Context, status Status) ([]CourseBookingWithDetails, error)
	ListByOrganizer(ctx context.Context, organizerUID int) ([]CourseBookingWithDetails, error)
}
