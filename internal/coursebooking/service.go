package coursebooking

import (
	"context"
	"errors"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/conflict"
	"github.com/dar44/reserva-municipal-sub001/internal/course"
	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
	"github.com/dar44/reserva-municipal-sub001/internal/venue"
	"github.com/jmoiron/sqlx"
)

var (
	ErrCourseBookingNotFound = errors.New("course booking not found")
	ErrInvalidInterval       = errors.New("start must be before end")
	ErrSlotInPast            = errors.New("cannot book a slot in the past")
	ErrVenueUnavailable      = errors.New("venue is not available for booking")
	ErrSlotUnavailable       = errors.New("time slot unavailable")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidDecision       = errors.New("decision must be aprobada, rechazada or cancelada")
	ErrAlreadyDecided        = errors.New("course booking already has that status")
	ErrConcurrentUpdate      = errors.New("course booking changed concurrently")
)

type CourseLookup interface {
	GetByID(ctx context.Context, id int64) (*course.Course, error)
}

type VenueLookup interface {
	GetByID(ctx context.Context, id int64) (*venue.Venue, error)
}

type Notifier interface {
	NotifyCourseBookingDecided(ctx context.Context, d Decided) error
}

type CheckerFactory func(q sqlx.QueryerContext) conflict.Checker

type Service interface {
	Request(ctx context.Context, actor auth.Actor, in RequestInput) (*CourseBooking, error)
	Decide(ctx context.Context, actor auth.Actor, id int64, d Decision) (*CourseBooking, error)
	ListPending(ctx context.Context) ([]CourseBookingWithDetails, error)
	ListMine(ctx context.Context, actor auth.Actor) ([]CourseBookingWithDetails, error)
}

type service struct {
	repo       Repository
	courses    CourseLookup
	venues     VenueLookup
	txRunner   db.VenueTxRunner
	checkerFor CheckerFactory
	notifier   Notifier
	now        func() time.Time
}

// NewService wires course booking requests and reviews. notifier may be nil.
func NewService(repo Repository, courses CourseLookup, venues VenueLookup, txRunner db.VenueTxRunner, checkerFor CheckerFactory, notifier Notifier) Service {
	return &service{
		repo:       repo,
		courses:    courses,
		venues:     venues,
		txRunner:   txRunner,
		checkerFor: checkerFor,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Request asks for a venue slot for one of the organizer's courses. The
// booking starts pendiente and already holds the slot.
func (s *service) Request(ctx context.Context, actor auth.Actor, in RequestInput) (*CourseBooking, error) {
	if actor.Role != auth.RoleOrganizer && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if in.RecintoID <= 0 || !in.StartAt.Before(in.EndAt) {
		return nil, ErrInvalidInterval
	}
	if in.StartAt.Before(s.now()) {
		return nil, ErrSlotInPast
	}

	c, err := s.courses.GetByID(ctx, in.CursoID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && c.OrganizerUID != actor.UID {
		return nil, ErrForbidden
	}

	v, err := s.venues.GetByID(ctx, in.RecintoID)
	if err != nil {
		return nil, err
	}
	if !v.State.Bookable() {
		return nil, ErrVenueUnavailable
	}

	var created *CourseBooking
	err = s.txRunner.InVenueTx(ctx, in.RecintoID, func(ctx context.Context, tx *sqlx.Tx) error {
		busy, err := s.checkerFor(tx).HasConflicts(ctx, in.RecintoID, in.StartAt, in.EndAt, conflict.Options{})
		if err != nil {
			return err
		}
		if busy {
			return ErrSlotUnavailable
		}

		created, err = s.repo.Insert(ctx, tx, c.OrganizerUID, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("course booking requested",
		"curso_reserva_id", created.ID, "curso_id", in.CursoID, "recinto_id", in.RecintoID)
	return created, nil
}

// Decide records a worker or admin review. Only pendiente bookings can be
// reviewed by workers; admins may revise an earlier decision. Approving
// re-checks the slot against everything except the booking itself.
func (s *service) Decide(ctx context.Context, actor auth.Actor, id int64, d Decision) (*CourseBooking, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	switch d.Status {
	case StatusApproved, StatusRejected, StatusCancelled:
	default:
		return nil, ErrInvalidDecision
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if current.Status == d.Status {
		return nil, ErrAlreadyDecided
	}

	var updated *CourseBooking
	if d.Status == StatusApproved {
		err = s.txRunner.InVenueTx(ctx, current.RecintoID, func(ctx context.Context, tx *sqlx.Tx) error {
			busy, err := s.checkerFor(tx).HasConflicts(ctx, current.RecintoID, current.StartAt, current.EndAt,
				conflict.Options{IgnoreCourseBookingID: &id})
			if err != nil {
				return err
			}
			if busy {
				return ErrSlotUnavailable
			}

			updated, err = s.repo.UpdateStatus(ctx, tx, id, current.Status, d, actor.UID)
			return err
		})
	} else {
		updated, err = s.repo.UpdateStatus(ctx, nil, id, current.Status, d, actor.UID)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordCourseBookingDecision(string(d.Status))
	logger.WithContext(ctx).Info("course booking decided",
		"curso_reserva_id", id, "from", string(current.Status), "to", string(d.Status), "worker_uid", actor.UID)

	if s.notifier != nil {
		event := Decided{
			CourseBookingID: updated.ID,
			CursoID:         updated.CursoID,
			RecintoID:       updated.RecintoID,
			OrganizerUID:    updated.OrganizerUID,
			WorkerUID:       actor.UID,
			PreviousStatus:  current.Status,
			Status:          updated.Status,
			Observations:    updated.Observations,
			StartAt:         updated.StartAt,
			EndAt:           updated.EndAt,
		}
		if err := s.notifier.NotifyCourseBookingDecided(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("course booking notification failed", "curso_reserva_id", id, "error", err.Error())
		}
	}

	return updated, nil
}

func (s *service) ListPending(ctx context.Context) ([]CourseBookingWithDetails, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

func (s *service) ListMine(ctx context.Context, actor auth.Actor) ([]CourseBookingWithDetails, error) {
	return s.repo.ListByOrganizer(ctx, actor.UID)
}
