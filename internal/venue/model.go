package venue

import (
	"fmt"
	"time"
)

// State is the availability of a recinto. Only Available venues accept new bookings.
type State string

const (
	StateAvailable   State = "Disponible"
	StateUnavailable State = "No disponible"
	StateBlocked     State = "Bloqueado"
)

func ParseState(raw string) (State, error) {
	switch s := State(raw); s {
	case StateAvailable, StateUnavailable, StateBlocked:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, raw)
}

func (s State) Bookable() bool {
	return s == StateAvailable
}

type Venue struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Location   string    `db:"location" json:"location"`
	State      State     `db:"state" json:"state"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type CreateVenueRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Location   string `json:"location" validate:"required,max=200"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
}

type SetStateRequest struct {
	State string `json:"state" validate:"required,oneof=Disponible 'No disponible' Bloqueado"`
}
