package notify

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dar44/reserva-municipal-sub001/internal/payment"
	"github.com/jmoiron/sqlx"
)

type PaymentRecipient struct {
	Email       string `db:"email"`
	Name        string `db:"name"`
	Concept     string `db:"concept"`
	AmountCents *int64 `db:"monto_centavos"`
	Currency    string `db:"moneda"`
}

type CourseBookingRecipient struct {
	Email      string `db:"email"`
	Name       string `db:"name"`
	CourseName string `db:"curso_name"`
	VenueName  string `db:"recinto_name"`
}

// Recipients resolves who should be emailed. A nil recipient with a nil
// error means there is nobody to write to.
type Recipients interface {
	ForPayment(ctx context.Context, c payment.Confirmation) (*PaymentRecipient, error)
	ForCourseBooking(ctx context.Context, courseBookingID int64) (*CourseBookingRecipient, error)
}

type recipientStore struct {
	db *sqlx.DB
}

func NewRecipientStore(db *sqlx.DB) Recipients {
	return &recipientStore{db: db}
}

func (r *recipientStore) ForPayment(ctx context.Context, c payment.Confirmation) (*PaymentRecipient, error) {
	var query string
	switch {
	case c.ReservaID != nil:
		query = `
			SELECT u.email, u.name, rc.name AS concept, p.monto_centavos, COALESCE(p.moneda, 'EUR') AS moneda
			FROM pagos p
			JOIN reservas rv ON rv.id = p.reserva_id
			JOIN recintos rc ON rc.id = rv.recinto_id
			JOIN users u ON u.id = rv.user_id
			WHERE p.id = $1`
	case c.InscripcionID != nil:
		query = `
			SELECT u.email, u.name, cu.name AS concept, p.monto_centavos, COALESCE(p.moneda, 'EUR') AS moneda
			FROM pagos p
			JOIN inscripciones i ON i.id = p.inscripcion_id
			JOIN cursos cu ON cu.id = i.curso_id
			JOIN users u ON u.id = i.user_id
			WHERE p.id = $1`
	default:
		return nil, nil
	}

	var out PaymentRecipient
	err := r.db.GetContext(ctx, &out, query, c.PaymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *recipientStore) ForCourseBooking(ctx context.Context, courseBookingID int64) (*CourseBookingRecipient, error) {
	query := `
		SELECT u.email, u.name, cu.name AS curso_name, rc.name AS recinto_name
		FROM curso_reservas cr
		JOIN cursos cu ON cu.id = cr.curso_id
		JOIN recintos rc ON rc.id = cr.recinto_id
		JOIN users u ON u.id = cr.organizer_uid
		WHERE cr.id = $1`

	var out CourseBookingRecipient
	err := r.db.GetContext(ctx, &out, query, courseBookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
