package payment

import (
	"context"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/provider"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Discard(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ReleaseStale(ctx context.Context, t Target, before time.Time) error {
	return m.Called(ctx, t, before).Error(0)
}

func (m *MockRepository) SetCheckout(ctx context.Context, id, checkoutID, checkoutURL string) error {
	return m.Called(ctx, id, checkoutID, checkoutURL).Error(0)
}

func (m *MockRepository) Apply(ctx context.Context, prev Status, next *Payment) (bool, error) {
	args := m.Called(ctx, prev, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetTarget(ctx context.Context, t Target) (*TargetInfo, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TargetInfo), args.Error(1)
}

func (m *MockRepository) PendingForTarget(ctx context.Context, t Target) (*Payment, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

type MockProvider struct{ mock.Mock }

func (m *MockProvider) CreateCheckout(ctx context.Context, req provider.CheckoutRequest) (*provider.Checkout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Checkout), args.Error(1)
}

func (m *MockProvider) GetCheckout(ctx context.Context, checkoutID string) (*provider.CheckoutStatus, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutStatus), args.Error(1)
}

func (m *MockProvider) GetOrder(ctx context.Context, orderID string) (*provider.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Order), args.Error(1)
}

func (m *MockProvider) FindOrderByCheckoutID(ctx context.Context, checkoutID string) (*provider.Order, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Order), args.Error(1)
}

func (m *MockProvider) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return m.Called(rawBody, signature).Bool(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyPaymentConfirmed(ctx context.Context, c Confirmation) error {
	return m.Called(ctx, c).Error(0)
}

func strp(s string) *string { return &s }

func i64p(v int64) *int64 { return &v }
