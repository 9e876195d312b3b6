package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis      *redis.Client
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
	retryDelay time.Duration

	// errorBackoff pauses the worker after a redis failure.
	errorBackoff time.Duration
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:         fromEmail,
		fromName:     fromName,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPass:     smtpPass,
		retryDelay:   5 * time.Second,
		errorBackoff: time.Second,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, "generic", to, name, subject, body)
}

func (s *Service) enqueue(ctx context.Context, kind, to, name, subject, body string) error {
	job := EmailJob{
		Type:    kind,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
		}

		if err := s.processNext(ctx); err != nil {
			logger.Errorf("Email queue unavailable: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(s.errorBackoff):
			}
		}
	}
}

// processNext handles at most one job. It returns an error only when the
// queue itself could not be read.
func (s *Service) processNext(ctx context.Context) error {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil
		}
		return err
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return nil
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(s.retryDelay)
			if rerr := s.requeue(job); rerr != nil {
				logger.Errorf("Failed to requeue email to %s: %v", job.To, rerr)
				metrics.RecordEmail(job.Type, "failed")
				s.saveFailed(job, err)
				return nil
			}
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordEmail(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return nil
	}

	metrics.RecordEmail(job.Type, "success")
	logger.Infof("Email sent successfully to %s", job.To)
	return nil
}

func (s *Service) requeue(job EmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.LPush(context.Background(), queueKey, string(data)).Err()
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, mErr := json.Marshal(failed)
	if mErr != nil {
		logger.Errorf("Failed to marshal failed email to %s: %v", job.To, mErr)
		return
	}
	if lErr := s.redis.LPush(context.Background(), failedQueueKey, string(data)).Err(); lErr != nil {
		logger.Errorf("Email to %s lost, failed queue unavailable: %v", job.To, lErr)
		return
	}
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

const dateLayout = "02/01/2006 15:04"

func (s *Service) SendReservationConfirmation(ctx context.Context, email, name, venue string, start, end time.Time) error {
	subject := "Reserva confirmada - " + venue
	body := fmt.Sprintf(`Hola %s,

Tu reserva ha sido registrada.

Recinto: %s
Desde: %s
Hasta: %s

- Reservas Municipales`, name, venue, start.Format(dateLayout), end.Format(dateLayout))

	return s.enqueue(ctx, "reservation_confirmation", email, name, subject, body)
}

func (s *Service) SendCancellation(ctx context.Context, email, name, venue string, start time.Time) error {
	subject := "Reserva cancelada - " + venue
	body := fmt.Sprintf(`Hola %s,

Tu reserva ha sido cancelada:

Recinto: %s
Fecha: %s

- Reservas Municipales`, name, venue, start.Format(dateLayout))

	return s.enqueue(ctx, "reservation_cancellation", email, name, subject, body)
}

func (s *Service) SendPaymentConfirmation(ctx context.Context, email, name, concept string, amountCents *int64, currency string) error {
	amount := "-"
	if amountCents != nil {
		amount = fmt.Sprintf("%d.%02d %s", *amountCents/100, *amountCents%100, currency)
	}

	subject := "Pago recibido - " + concept
	body := fmt.Sprintf(`Hola %s,

Hemos recibido tu pago.

Concepto: %s
Importe: %s

- Reservas Municipales`, name, concept, amount)

	return s.enqueue(ctx, "payment_confirmation", email, name, subject, body)
}

func (s *Service) SendCourseBookingDecision(ctx context.Context, email, name, course, venue, status, observations string, start time.Time) error {
	subject := fmt.Sprintf("Solicitud de recinto %s - %s", status, course)
	body := fmt.Sprintf(`Hola %s,

Tu solicitud para el curso %s ha sido %s.

Recinto: %s
Fecha: %s
Observaciones: %s

- Reservas Municipales`, name, course, status, venue, start.Format(dateLayout), observations)

	return s.enqueue(ctx, "course_booking_decision", email, name, subject, body)
}
