package venue

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, location string, priceCents int64) (*Venue, error) {
	query := `
		INSERT INTO recintos (name, location, price_cents)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, state, price_cents, created_at
	`

	var v Venue
	if err := r.db.GetContext(ctx, &v, query, name, location, priceCents); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Venue, error) {
	query := `
		SELECT id, name, location, state, price_cents, created_at
		FROM recintos
		ORDER BY name
	`

	venues := []Venue{}
	if err := r.db.SelectContext(ctx, &venues, query); err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Venue, error) {
	query := `
		SELECT id, name, location, state, price_cents, created_at
		FROM recintos
		WHERE id = $1
	`

	var v Venue
	err := r.db.GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) SetState(ctx context.Context, id int64, state State) (*Venue, error) {
	query := `
		UPDATE recintos SET state = $1
		WHERE id = $2
		RETURNING id, name, location, state, price_cents, created_at
	`

	var v Venue
	err := r.db.GetContext(ctx, &v, query, state, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
