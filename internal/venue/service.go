package venue

import (
	"context"
	"errors"

	"github.com/dar44/reserva-municipal-sub001/internal/logger"
)

var (
	ErrVenueNotFound = errors.New("venue not found")
	ErrInvalidState  = errors.New("invalid venue state")
)

type Service interface {
	Create(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
	Get(ctx context.Context, id int64) (*Venue, error)
	SetState(ctx context.Context, id int64, raw string) (*Venue, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) Create(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	return s.repo.Create(ctx, req.Name, req.Location, req.PriceCents)
}

func (s *service) List(ctx context.Context) ([]Venue, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetState(ctx context.Context, id int64, raw string) (*Venue, error) {
	state, err := ParseState(raw)
	if err != nil {
		return nil, err
	}

	v, err := s.repo.SetState(ctx, id, state)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("venue state changed", "recinto_id", id, "state", string(state))
	return v, nil
}
