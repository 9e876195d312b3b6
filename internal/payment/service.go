package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/provider"
	"github.com/google/uuid"
)

const defaultCurrency = "EUR"

type Service interface {
	StartCheckout(ctx context.Context, actor auth.Actor, t Target) (*CheckoutResult, error)
	Reconcile(ctx context.Context, paymentID string) (*ReconcileResult, error)
	// ReconcileFor is Reconcile restricted to the owner of the paid booking.
	// Workers and admins may reconcile any payment.
	ReconcileFor(ctx context.Context, actor auth.Actor, paymentID string) (*ReconcileResult, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error)
}

type service struct {
	*Reconciler
	repo     Repository
	provider Provider
	timeout  time.Duration
}

func NewService(repo Repository, p Provider, notifier Notifier, timeout time.Duration) Service {
	return &service{
		Reconciler: NewReconciler(repo, p, notifier, timeout),
		repo:       repo,
		provider:   p,
		timeout:    timeout,
	}
}

// StartCheckout opens a provider checkout for an unpaid reserva or inscripcion
// owned by the actor. A still open checkout for the same target is reused.
func (s *service) StartCheckout(ctx context.Context, actor auth.Actor, t Target) (*CheckoutResult, error) {
	if (t.ReservaID == nil) == (t.InscripcionID == nil) {
		return nil, ErrInvalidTarget
	}

	info, err := s.repo.GetTarget(ctx, t)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (info.OwnerID == nil || *info.OwnerID != int64(actor.UID)) {
		return nil, ErrForbidden
	}
	if info.Paid {
		return nil, ErrAlreadyPaid
	}
	if info.Status == "cancelada" {
		return nil, ErrTargetCancelled
	}

	existing, err := s.repo.PendingForTarget(ctx, t)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CheckoutResult{PaymentID: existing.ID, CheckoutURL: deref(existing.CheckoutURL)}, nil
	}

	// A start that crashed between insert and provider call leaves a row
	// without checkout that would block the target forever.
	if err := s.repo.ReleaseStale(ctx, t, time.Now().Add(-2*s.timeout)); err != nil {
		return nil, err
	}

	amount := info.AmountCents
	currency := defaultCurrency
	p := &Payment{
		ID:            uuid.NewString(),
		Status:        StatusPending,
		ReservaID:     t.ReservaID,
		InscripcionID: t.InscripcionID,
		AmountCents:   &amount,
		Currency:      &currency,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrCheckoutInProgress) {
			if open, perr := s.repo.PendingForTarget(ctx, t); perr == nil && open != nil {
				return &CheckoutResult{PaymentID: open.ID, CheckoutURL: deref(open.CheckoutURL)}, nil
			}
		}
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	checkout, err := s.provider.CreateCheckout(callCtx, provider.CheckoutRequest{
		PaymentID:   p.ID,
		AmountCents: amount,
		Description: info.Description,
		Email:       info.OwnerEmail,
	})
	if err != nil {
		logger.WithContext(ctx).Error("create checkout failed", "pago_id", p.ID, "error", err)
		if derr := s.repo.Discard(context.WithoutCancel(ctx), p.ID); derr != nil {
			logger.WithContext(ctx).Warn("discard payment without checkout failed", "pago_id", p.ID, "error", derr)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamSync, err)
	}

	if err := s.repo.SetCheckout(ctx, p.ID, checkout.ID, checkout.URL); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("checkout started", "pago_id", p.ID, "checkout_id", checkout.ID)
	return &CheckoutResult{PaymentID: p.ID, CheckoutURL: checkout.URL}, nil
}

func (s *service) ReconcileFor(ctx context.Context, actor auth.Actor, paymentID string) (*ReconcileResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	if !actor.IsStaff() {
		p, err := s.repo.GetByID(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		t := Target{ReservaID: p.ReservaID, InscripcionID: p.InscripcionID}
		if t.ReservaID == nil && t.InscripcionID == nil {
			return nil, ErrForbidden
		}
		info, err := s.repo.GetTarget(ctx, t)
		if err != nil {
			return nil, err
		}
		if info.OwnerID == nil || *info.OwnerID != int64(actor.UID) {
			return nil, ErrForbidden
		}
	}

	return s.Reconcile(ctx, paymentID)
}
