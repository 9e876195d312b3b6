package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, estado, checkout_id, checkout_url, order_id, reserva_id, inscripcion_id,
		monto_centavos, moneda, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM pagos WHERE id = $1`

	var p Payment
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Status = NormalizeStatus(string(p.Status))
	return &p, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM pagos WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`

	var p Payment
	err := r.db.GetContext(ctx, &p, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Status = NormalizeStatus(string(p.Status))
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO pagos (id, estado, reserva_id, inscripcion_id, monto_centavos, moneda)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.ID, p.Status, p.ReservaID, p.InscripcionID, p.AmountCents, p.Currency).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrCheckoutInProgress
	}
	return err
}

func (r *repository) Discard(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pagos WHERE id = $1 AND estado = 'pendiente' AND checkout_id IS NULL`, id)
	return err
}

func (r *repository) ReleaseStale(ctx context.Context, t Target, before time.Time) error {
	column, id, err := targetColumn(t)
	if err != nil {
		return err
	}

	query := `DELETE FROM pagos
		WHERE ` + column + ` = $1 AND estado = 'pendiente' AND checkout_id IS NULL AND created_at < $2`
	_, err = r.db.ExecContext(ctx, query, id, before)
	return err
}

func (r *repository) SetCheckout(ctx context.Context, id, checkoutID, checkoutURL string) error {
	query := `UPDATE pagos SET checkout_id = $1, checkout_url = $2, updated_at = NOW() WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, checkoutID, checkoutURL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) Apply(ctx context.Context, prev Status, next *Payment) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE pagos
		SET estado = $1, order_id = $2, monto_centavos = $3, moneda = $4, updated_at = NOW()
		WHERE id = $5 AND estado = $6
	`, next.Status, next.OrderID, next.AmountCents, next.Currency, next.ID, prev)
	if err != nil {
		return false, fmt.Errorf("update pago %s: %w", next.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	paid := next.Status == StatusPaid
	switch {
	case next.ReservaID != nil:
		if _, err := tx.ExecContext(ctx, `UPDATE reservas SET paid = $1 WHERE id = $2`, paid, *next.ReservaID); err != nil {
			return false, fmt.Errorf("mark reserva %d: %w", *next.ReservaID, err)
		}
	case next.InscripcionID != nil:
		if _, err := tx.ExecContext(ctx, `UPDATE inscripciones SET paid = $1 WHERE id = $2`, paid, *next.InscripcionID); err != nil {
			return false, fmt.Errorf("mark inscripcion %d: %w", *next.InscripcionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) GetTarget(ctx context.Context, t Target) (*TargetInfo, error) {
	var query string
	var id int64

	switch {
	case t.ReservaID != nil:
		id = *t.ReservaID
		query = `
			SELECT r.user_id AS owner_id, COALESCE(u.email, '') AS owner_email, r.paid, r.status,
			       rc.price_cents AS amount_cents, rc.name AS description
			FROM reservas r
			JOIN recintos rc ON rc.id = r.recinto_id
			LEFT JOIN users u ON u.id = r.user_id
			WHERE r.id = $1
		`
	case t.InscripcionID != nil:
		id = *t.InscripcionID
		query = `
			SELECT i.user_id AS owner_id, u.email AS owner_email, i.paid, i.status,
			       c.price_cents AS amount_cents, c.name AS description
			FROM inscripciones i
			JOIN cursos c ON c.id = i.curso_id
			JOIN users u ON u.id = i.user_id
			WHERE i.id = $1
		`
	default:
		return nil, ErrInvalidTarget
	}

	var info TargetInfo
	err := r.db.GetContext(ctx, &info, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) PendingForTarget(ctx context.Context, t Target) (*Payment, error) {
	column, id, err := targetColumn(t)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + paymentColumns + ` FROM pagos
		WHERE ` + column + ` = $1 AND estado = 'pendiente' AND checkout_url IS NOT NULL
		ORDER BY created_at DESC LIMIT 1`

	var p Payment
	err = r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func targetColumn(t Target) (string, int64, error) {
	switch {
	case t.ReservaID != nil:
		return "reserva_id", *t.ReservaID, nil
	case t.InscripcionID != nil:
		return "inscripcion_id", *t.InscripcionID, nil
	}
	return "", 0, ErrInvalidTarget
}
