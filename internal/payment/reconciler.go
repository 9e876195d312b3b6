package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
	"github.com/dar44/reserva-municipal-sub001/internal/provider"
)

// Provider is the subset of the checkout provider client the payment flows use.
type Provider interface {
	CreateCheckout(ctx context.Context, req provider.CheckoutRequest) (*provider.Checkout, error)
	GetCheckout(ctx context.Context, checkoutID string) (*provider.CheckoutStatus, error)
	GetOrder(ctx context.Context, orderID string) (*provider.Order, error)
	FindOrderByCheckoutID(ctx context.Context, checkoutID string) (*provider.Order, error)
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

// Notifier is told once per payment that reaches pagado. Its errors never
// undo the committed transition.
type Notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, c Confirmation) error
}

type Reconciler struct {
	repo     Repository
	provider Provider
	notifier Notifier
	timeout  time.Duration
}

func NewReconciler(repo Repository, p Provider, notifier Notifier, timeout time.Duration) *Reconciler {
	return &Reconciler{repo: repo, provider: p, notifier: notifier, timeout: timeout}
}

// Reconcile brings a payment in line with the provider. Terminal payments and
// payments without any provider reference are returned untouched.
func (r *Reconciler) Reconcile(ctx context.Context, paymentID string) (*ReconcileResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	current, err := r.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if current.Status.IsTerminal() {
		metrics.RecordReconciliation("terminal")
		return resultFor(current, false, false), nil
	}
	if blank(current.CheckoutID) && blank(current.OrderID) {
		metrics.RecordReconciliation("no_reference")
		return resultFor(current, false, false), nil
	}

	next, err := r.resolve(ctx, current)
	if err != nil {
		metrics.RecordReconciliation("upstream_error")
		logger.WithContext(ctx).Error("payment sync failed", "pago_id", paymentID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamSync, err)
	}

	stored, updated, err := r.apply(ctx, current, next)
	if err != nil {
		metrics.RecordReconciliation("store_error")
		return nil, err
	}

	if updated {
		metrics.RecordReconciliation("updated")
	} else {
		metrics.RecordReconciliation("unchanged")
	}
	return resultFor(stored, true, updated), nil
}

// resolve asks the provider for the current state of the payment. It never
// writes; the returned copy carries whatever the provider taught us.
func (r *Reconciler) resolve(ctx context.Context, current *Payment) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	next := *current
	checkoutStatus := StatusPending

	if !blank(current.CheckoutID) {
		checkout, err := r.provider.GetCheckout(ctx, *current.CheckoutID)
		if err != nil {
			return nil, fmt.Errorf("get checkout %s: %w", *current.CheckoutID, err)
		}
		checkoutStatus = FromCheckoutStatus(checkout.Status)

		if blank(current.OrderID) {
			if checkout.OrderID != "" {
				orderID := checkout.OrderID
				next.OrderID = &orderID
			}
			if checkoutStatus == StatusPending {
				return &next, nil
			}

			order, err := r.provider.FindOrderByCheckoutID(ctx, *current.CheckoutID)
			if err != nil {
				return nil, fmt.Errorf("find order for checkout %s: %w", *current.CheckoutID, err)
			}
			next.Status = checkoutStatus
			if order != nil {
				learnOrder(&next, order)
				next.Status = preferOrder(FromCheckoutStatus(order.Status), checkoutStatus)
			}
			return &next, nil
		}
	}

	order, err := r.provider.GetOrder(ctx, *current.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", *current.OrderID, err)
	}
	learnOrder(&next, order)
	next.Status = preferOrder(FromCheckoutStatus(order.Status), checkoutStatus)
	return &next, nil
}

// apply persists next when it differs from current. Only the caller whose
// conditional update wins the transition into pagado notifies.
func (r *Reconciler) apply(ctx context.Context, current, next *Payment) (*Payment, bool, error) {
	if !changed(current, next) {
		return current, false, nil
	}

	won, err := r.repo.Apply(ctx, current.Status, next)
	if err != nil {
		return nil, false, err
	}
	if !won {
		latest, err := r.repo.GetByID(ctx, current.ID)
		if err != nil {
			return nil, false, err
		}
		return latest, false, nil
	}

	logger.WithContext(ctx).Info("payment updated",
		"pago_id", next.ID,
		"from", current.Status,
		"to", next.Status,
		"order_id", deref(next.OrderID),
	)

	if current.Status != StatusPaid && next.Status == StatusPaid {
		r.notify(ctx, current, next)
	}
	return next, true, nil
}

func (r *Reconciler) notify(ctx context.Context, current, next *Payment) {
	if r.notifier == nil {
		return
	}
	err := r.notifier.NotifyPaymentConfirmed(ctx, Confirmation{
		PaymentID:      next.ID,
		PreviousStatus: current.Status,
		NextStatus:     next.Status,
		ReservaID:      next.ReservaID,
		InscripcionID:  next.InscripcionID,
	})
	if err != nil {
		logger.WithContext(ctx).Warn("payment confirmation not delivered", "pago_id", next.ID, "error", err)
	}
}

// preferOrder lets a conclusive checkout outcome show through an order that
// still reads pendiente.
func preferOrder(order, checkout Status) Status {
	if order == StatusPending {
		return checkout
	}
	return order
}

func learnOrder(p *Payment, o *provider.Order) {
	if blank(p.OrderID) && o.ID != "" {
		id := o.ID
		p.OrderID = &id
	}
	if o.Total != nil {
		total := *o.Total
		p.AmountCents = &total
	}
	if o.Currency != "" {
		currency := o.Currency
		p.Currency = &currency
	}
}

func changed(a, b *Payment) bool {
	return a.Status != b.Status ||
		deref(a.OrderID) != deref(b.OrderID) ||
		deref(a.Currency) != deref(b.Currency) ||
		!sameInt(a.AmountCents, b.AmountCents)
}

func resultFor(p *Payment, synced, updated bool) *ReconcileResult {
	return &ReconcileResult{
		PaymentID: p.ID,
		Status:    p.Status,
		OrderID:   deref(p.OrderID),
		Synced:    synced,
		Updated:   updated,
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sameInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
