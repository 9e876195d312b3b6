package venue

import "context"

type Repository interface {
	Create(ctx context.Context, name, location string, priceCents int64) (*Venue, error)
	GetAll(ctx context.Context) ([]Venue, error)
	GetByID(ctx context.Context, id int64) (*Venue, error)
	SetState(ctx context.Context, id int64, state State) (*Venue, error)
}
