package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const orderCreatedBody = `{
	"meta": {"event_name": "order_created", "custom_data": {"pago_id": "p1"}},
	"data": {"id": "ord_1", "type": "orders", "attributes": {"status": "paid", "total": 2500, "currency": "eur"}}
}`

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	r, repo, prov, _ := newTestReconciler()
	prov.On("VerifyWebhookSignature", []byte(orderCreatedBody), "bad").Return(false)

	res, err := r.HandleWebhook(context.Background(), []byte(orderCreatedBody), "bad")

	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Nil(t, res)
	assert.Empty(t, repo.Calls)
}

func TestHandleWebhook_InvalidPayload(t *testing.T) {
	r, repo, prov, _ := newTestReconciler()
	prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)

	_, err := r.HandleWebhook(context.Background(), []byte(`not json`), "sig")

	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Empty(t, repo.Calls)
}

func TestHandleWebhook_MarksPaidAndNotifies(t *testing.T) {
	r, repo, prov, notifier := newTestReconciler()
	prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
	repo.On("GetByID", mock.Anything, "p1").Return(&Payment{ID: "p1", Status: StatusPending, CheckoutID: strp("chk_1"), ReservaID: i64p(42)}, nil)
	repo.On("Apply", mock.Anything, StatusPending, mock.MatchedBy(func(p *Payment) bool {
		return p.Status == StatusPaid && deref(p.OrderID) == "ord_1" && *p.AmountCents == 2500 && deref(p.Currency) == "EUR"
	})).Return(true, nil)
	notifier.On("NotifyPaymentConfirmed", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := r.HandleWebhook(context.Background(), []byte(orderCreatedBody), "sig")

	require.NoError(t, err)
	assert.Equal(t, &WebhookResult{PaymentID: "p1", Status: StatusPaid, Updated: true}, res)
	notifier.AssertExpectations(t)
	prov.AssertNotCalled(t, "GetCheckout", mock.Anything, mock.Anything)
}

func TestHandleWebhook_LocatesByOrderID(t *testing.T) {
	body := `{"meta":{"event_name":"order_refunded"},"data":{"id":"ord_2","attributes":{"status":"refunded"}}}`

	r, repo, prov, notifier := newTestReconciler()
	prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
	repo.On("GetByOrderID", mock.Anything, "ord_2").Return(&Payment{ID: "p2", Status: StatusPaid, OrderID: strp("ord_2"), InscripcionID: i64p(5)}, nil)
	repo.On("Apply", mock.Anything, StatusPaid, mock.MatchedBy(func(p *Payment) bool {
		return p.Status == StatusRefunded
	})).Return(true, nil)

	res, err := r.HandleWebhook(context.Background(), []byte(body), "sig")

	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, res.Status)
	assert.True(t, res.Updated)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyPaymentConfirmed", mock.Anything, mock.Anything)
}

func TestHandleWebhook_UnknownPaymentIgnored(t *testing.T) {
	r, repo, prov, _ := newTestReconciler()
	prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
	repo.On("GetByID", mock.Anything, "p1").Return(nil, ErrPaymentNotFound)
	repo.On("GetByOrderID", mock.Anything, "ord_1").Return(nil, ErrPaymentNotFound)

	res, err := r.HandleWebhook(context.Background(), []byte(orderCreatedBody), "sig")

	require.NoError(t, err)
	assert.True(t, res.Ignored)
	repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_NeverRegressesTerminal(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		event   string
	}{
		{"Paid stays paid on pending event", StatusPaid, "order_pending"},
		{"Failed stays failed on paid event", StatusFailed, "order_paid"},
		{"Refunded stays refunded on paid event", StatusRefunded, "order_created"},
		{"Cancelled stays cancelled on failure", StatusCancelled, "order_payment_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"meta":{"event_name":"` + tt.event + `","custom_data":{"pago_id":"p1"}},"data":{"id":"ord_1","attributes":{}}}`

			r, repo, prov, notifier := newTestReconciler()
			prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
			repo.On("GetByID", mock.Anything, "p1").Return(&Payment{ID: "p1", Status: tt.current, OrderID: strp("ord_1")}, nil)

			res, err := r.HandleWebhook(context.Background(), []byte(body), "sig")

			require.NoError(t, err)
			assert.Equal(t, tt.current, res.Status)
			assert.False(t, res.Updated)
			repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
			notifier.AssertNotCalled(t, "NotifyPaymentConfirmed", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleWebhook_DuplicateDeliveryNotifiesOnce(t *testing.T) {
	r, repo, prov, notifier := newTestReconciler()
	prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
	repo.On("GetByID", mock.Anything, "p1").Return(&Payment{ID: "p1", Status: StatusPending, ReservaID: i64p(42)}, nil).Once()
	repo.On("Apply", mock.Anything, StatusPending, mock.Anything).Return(true, nil).Once()
	notifier.On("NotifyPaymentConfirmed", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("GetByID", mock.Anything, "p1").Return(&Payment{
		ID: "p1", Status: StatusPaid, OrderID: strp("ord_1"), ReservaID: i64p(42), AmountCents: i64p(2500), Currency: strp("EUR"),
	}, nil)

	_, err := r.HandleWebhook(context.Background(), []byte(orderCreatedBody), "sig")
	require.NoError(t, err)
	res, err := r.HandleWebhook(context.Background(), []byte(orderCreatedBody), "sig")
	require.NoError(t, err)

	assert.False(t, res.Updated)
	notifier.AssertNumberOfCalls(t, "NotifyPaymentConfirmed", 1)
	repo.AssertNumberOfCalls(t, "Apply", 1)
}

func TestHandleWebhook_StoreError(t *testing.T) {
	r, repo, prov, _ := newTestReconciler()
	prov.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
	repo.On("GetByID", mock.Anything, "p1").Return(nil, errors.New("db down"))

	_, err := r.HandleWebhook(context.Background(), []byte(orderCreatedBody), "sig")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPaymentNotFound)
}
