// Package notify fans domain events out to the message broker and the email queue.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/coursebooking"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
	"github.com/dar44/reserva-municipal-sub001/internal/mq"
	"github.com/dar44/reserva-municipal-sub001/internal/payment"
)

const (
	kindPaymentConfirmed     = "payment_confirmed"
	kindCourseBookingDecided = "course_booking_decided"
)

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type Mailer interface {
	SendPaymentConfirmation(ctx context.Context, email, name, concept string, amountCents *int64, currency string) error
	SendCourseBookingDecision(ctx context.Context, email, name, course, venue, status, observations string, start time.Time) error
}

type Service struct {
	publisher  Publisher
	mailer     Mailer
	recipients Recipients
}

// NewService builds a notifier. publisher and mailer may be nil; the
// corresponding channel is then skipped.
func NewService(publisher Publisher, mailer Mailer, recipients Recipients) *Service {
	return &Service{
		publisher:  publisher,
		mailer:     mailer,
		recipients: recipients,
	}
}

// NotifyPaymentConfirmed publishes payment.confirmed and emails the owner of
// the paid reserva or inscripcion. Both channels are attempted; the first
// error is returned.
func (s *Service) NotifyPaymentConfirmed(ctx context.Context, c payment.Confirmation) error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(ctx, mq.RoutingPaymentConfirmed, mq.NewEvent(mq.RoutingPaymentConfirmed, c)); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	if s.mailer != nil {
		if err := s.mailPayment(ctx, c); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	return s.finish(ctx, kindPaymentConfirmed, errs)
}

func (s *Service) mailPayment(ctx context.Context, c payment.Confirmation) error {
	r, err := s.recipients.ForPayment(ctx, c)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	return s.mailer.SendPaymentConfirmation(ctx, r.Email, r.Name, r.Concept, r.AmountCents, r.Currency)
}

func (s *Service) NotifyCourseBookingDecided(ctx context.Context, d coursebooking.Decided) error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(ctx, mq.RoutingCourseBookingDecided, mq.NewEvent(mq.RoutingCourseBookingDecided, d)); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	if s.mailer != nil {
		if err := s.mailDecision(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	return s.finish(ctx, kindCourseBookingDecided, errs)
}

func (s *Service) mailDecision(ctx context.Context, d coursebooking.Decided) error {
	r, err := s.recipients.ForCourseBooking(ctx, d.CourseBookingID)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	return s.mailer.SendCourseBookingDecision(ctx, r.Email, r.Name, r.CourseName, r.VenueName, string(d.Status), d.Observations, d.StartAt)
}

func (s *Service) finish(ctx context.Context, kind string, errs []error) error {
	if len(errs) == 0 {
		metrics.RecordNotification(kind, "sent")
		return nil
	}

	metrics.RecordNotification(kind, "failed")
	logger.WithContext(ctx).Warn("notification incomplete", "kind", kind, "error", errors.Join(errs...).Error())
	return errs[0]
}
