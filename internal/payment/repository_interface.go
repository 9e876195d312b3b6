package payment

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	// Create fails with ErrCheckoutInProgress when the target already has a
	// pendiente payment.
	Create(ctx context.Context, p *Payment) error
	// Discard removes a pendiente payment that never got a checkout.
	Discard(ctx context.Context, id string) error
	// ReleaseStale removes pendiente payments of t without a checkout that
	// were created before the given time.
	ReleaseStale(ctx context.Context, t Target, before time.Time) error
	SetCheckout(ctx context.Context, id, checkoutID, checkoutURL string) error

	// Apply writes next over the row only while its estado is still prev, and
	// propagates the paid flag to the linked reserva or inscripcion in the
	// same transaction. It reports false when another writer got there first.
	Apply(ctx context.Context, prev Status, next *Payment) (bool, error)

	GetTarget(ctx context.Context, t Target) (*TargetInfo, error)
	// PendingForTarget returns an open pendiente payment for t, if any.
	PendingForTarget(ctx context.Context, t Target) (*Payment, error)
}
