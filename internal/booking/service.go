package booking

import (
	"context"
	"errors"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/conflict"
	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
	"github.com/dar44/reserva-municipal-sub001/internal/venue"
	"github.com/jmoiron/sqlx"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidInterval   = errors.New("start must be before end")
	ErrSlotInPast        = errors.New("cannot book a slot in the past")
	ErrVenueUnavailable  = errors.New("venue is not available for booking")
	ErrSlotUnavailable   = errors.New("time slot unavailable")
	ErrAlreadyCancelled  = errors.New("booking already cancelled")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidStatsRange = errors.New("from must be before to")
)

type VenueLookup interface {
	GetByID(ctx context.Context, id int64) (*venue.Venue, error)
}

type Mailer interface {
	SendReservationConfirmation(ctx context.Context, email, name, venue string, start, end time.Time) error
	SendCancellation(ctx context.Context, email, name, venue string, start time.Time) error
}

// CheckerFactory builds a conflict checker bound to an open transaction.
type CheckerFactory func(q sqlx.QueryerContext) conflict.Checker

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error)
	Cancel(ctx context.Context, actor auth.Actor, id int64) error
	ListMine(ctx context.Context, actor auth.Actor) ([]BookingWithDetails, error)
	ListByVenue(ctx context.Context, recintoID int64) ([]BookingWithDetails, error)
	Stats(ctx context.Context, from, to time.Time) ([]DayStats, error)
}

type service struct {
	repo       Repository
	venues     VenueLookup
	txRunner   db.VenueTxRunner
	checkerFor CheckerFactory
	mailer     Mailer
	now        func() time.Time
}

// NewService wires the reservation flow. mailer may be nil.
func NewService(repo Repository, venues VenueLookup, txRunner db.VenueTxRunner, checkerFor CheckerFactory, mailer Mailer) Service {
	return &service{
		repo:       repo,
		venues:     venues,
		txRunner:   txRunner,
		checkerFor: checkerFor,
		mailer:     mailer,
		now:        time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Booking, error) {
	if req.RecintoID <= 0 || !req.StartAt.Before(req.EndAt) {
		return nil, ErrInvalidInterval
	}
	if req.StartAt.Before(s.now()) {
		return nil, ErrSlotInPast
	}

	v, err := s.venues.GetByID(ctx, req.RecintoID)
	if err != nil {
		return nil, err
	}
	if !v.State.Bookable() {
		return nil, ErrVenueUnavailable
	}

	var created *Booking
	err = s.txRunner.InVenueTx(ctx, req.RecintoID, func(ctx context.Context, tx *sqlx.Tx) error {
		busy, err := s.checkerFor(tx).HasConflicts(ctx, req.RecintoID, req.StartAt, req.EndAt, conflict.Options{})
		if err != nil {
			return err
		}
		if busy {
			return ErrSlotUnavailable
		}

		created, err = s.repo.Insert(ctx, tx, req.RecintoID, actor.UID, req.StartAt, req.EndAt)
		return err
	})
	if db.IsExclusionViolation(err) {
		err = ErrSlotUnavailable
	}
	if err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			metrics.RecordReservation("conflict")
		} else {
			metrics.RecordReservation("error")
		}
		return nil, err
	}

	metrics.RecordReservation("created")
	logger.WithContext(ctx).Info("reservation created",
		"reserva_id", created.ID, "recinto_id", created.RecintoID, "user_id", actor.UID)

	s.mail(ctx, created.ID, func(d *BookingWithDetails) error {
		return s.mailer.SendReservationConfirmation(ctx, d.UserEmail, d.UserName, d.RecintoName, d.StartAt, d.EndAt)
	})

	return created, nil
}

// Cancel releases the slot. Only the owner or an admin may cancel.
func (s *service) Cancel(ctx context.Context, actor auth.Actor, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && (b.UserID == nil || *b.UserID != actor.UID) {
		return ErrForbidden
	}

	ok, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyCancelled
	}

	metrics.RecordReservationCancellation()
	logger.WithContext(ctx).Info("reservation cancelled", "reserva_id", id, "by", actor.UID)

	s.mail(ctx, id, func(d *BookingWithDetails) error {
		return s.mailer.SendCancellation(ctx, d.UserEmail, d.UserName, d.RecintoName, d.StartAt)
	})

	return nil
}

func (s *service) mail(ctx context.Context, id int64, send func(d *BookingWithDetails) error) {
	if s.mailer == nil {
		return
	}

	d, err := s.repo.GetDetails(ctx, id)
	if err == nil && d.UserEmail == "" {
		return
	}
	if err == nil {
		err = send(d)
	}
	if err != nil {
		logger.WithContext(ctx).Warn("reservation email not queued", "reserva_id", id, "error", err.Error())
	}
}

func (s *service) ListMine(ctx context.Context, actor auth.Actor) ([]BookingWithDetails, error) {
	return s.repo.GetUserBookings(ctx, actor.UID)
}

func (s *service) ListByVenue(ctx context.Context, recintoID int64) ([]BookingWithDetails, error) {
	if _, err := s.venues.GetByID(ctx, recintoID); err != nil {
		return nil, err
	}
	return s.repo.GetVenueBookings(ctx, recintoID)
}

func (s *service) Stats(ctx context.Context, from, to time.Time) ([]DayStats, error) {
	if !from.Before(to) {
		return nil, ErrInvalidStatsRange
	}
	return s.repo.StatsByDay(ctx, from, to)
}
