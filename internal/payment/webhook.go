package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/metrics"
)

// HandleWebhook applies an inbound provider event. The signature is checked
// before anything is read. Events for unknown payments are acknowledged and
// ignored so the provider stops retrying them.
//
// A terminal payment is never moved back. The single forward move allowed
// from a terminal estado is pagado to reembolsado.
func (r *Reconciler) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*WebhookResult, error) {
	if !r.provider.VerifyWebhookSignature(rawBody, signature) {
		metrics.RecordWebhook("invalid_signature")
		return nil, ErrInvalidSignature
	}

	var evt webhookEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		metrics.RecordWebhook("invalid_payload")
		return nil, ErrInvalidPayload
	}

	current, err := r.locate(ctx, &evt)
	if errors.Is(err, ErrPaymentNotFound) {
		metrics.RecordWebhook("ignored")
		logger.WithContext(ctx).Info("webhook for unknown payment ignored",
			"event", evt.Meta.EventName,
			"pago_id", evt.Meta.CustomData.PaymentID,
			"order_id", evt.Data.ID,
		)
		return &WebhookResult{Ignored: true}, nil
	}
	if err != nil {
		metrics.RecordWebhook("store_error")
		return nil, err
	}

	target := FromProviderEvent(evt.Meta.EventName, evt.Data.Attributes.Status)

	next := *current
	if !allowedFromWebhook(current.Status, target) {
		metrics.RecordWebhook("stale")
		return &WebhookResult{PaymentID: current.ID, Status: current.Status}, nil
	}
	next.Status = target

	if blank(next.OrderID) && evt.Data.ID != "" {
		orderID := evt.Data.ID
		next.OrderID = &orderID
	}
	if evt.Data.Attributes.Total != nil {
		total := *evt.Data.Attributes.Total
		next.AmountCents = &total
	}
	if c := strings.ToUpper(strings.TrimSpace(evt.Data.Attributes.Currency)); c != "" {
		next.Currency = &c
	}

	stored, updated, err := r.apply(ctx, current, &next)
	if err != nil {
		metrics.RecordWebhook("store_error")
		return nil, err
	}

	if updated {
		metrics.RecordWebhook("updated")
	} else {
		metrics.RecordWebhook("unchanged")
	}
	return &WebhookResult{PaymentID: stored.ID, Status: stored.Status, Updated: updated}, nil
}

func (r *Reconciler) locate(ctx context.Context, evt *webhookEvent) (*Payment, error) {
	if id := strings.TrimSpace(evt.Meta.CustomData.PaymentID); id != "" {
		p, err := r.repo.GetByID(ctx, id)
		if !errors.Is(err, ErrPaymentNotFound) {
			return p, err
		}
	}
	if evt.Data.ID != "" {
		return r.repo.GetByOrderID(ctx, evt.Data.ID)
	}
	return nil, ErrPaymentNotFound
}

func allowedFromWebhook(from, to Status) bool {
	if !from.IsTerminal() {
		return true
	}
	if from == to {
		return true
	}
	return from == StatusPaid && to == StatusRefunded
}
