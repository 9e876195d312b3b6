package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dar44/reserva-municipal-sub001/internal/auth"
	"github.com/dar44/reserva-municipal-sub001/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (Service, *MockRepository, *MockProvider) {
	repo := new(MockRepository)
	prov := new(MockProvider)
	return NewService(repo, prov, new(MockNotifier), time.Second), repo, prov
}

var citizen = auth.Actor{UID: 7, Role: auth.RoleCitizen}

func TestStartCheckout_Success(t *testing.T) {
	svc, repo, prov := newTestService()
	target := Target{ReservaID: i64p(42)}

	repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{
		OwnerID: i64p(7), OwnerEmail: "ana@example.com", Status: "activa", AmountCents: 2500, Description: "Pista 1",
	}, nil)
	repo.On("PendingForTarget", mock.Anything, target).Return(nil, nil)
	repo.On("ReleaseStale", mock.Anything, target, mock.AnythingOfType("time.Time")).Return(nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.ID != "" && p.Status == StatusPending && *p.ReservaID == 42 && *p.AmountCents == 2500 && *p.Currency == "EUR"
	})).Return(nil)
	prov.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(req provider.CheckoutRequest) bool {
		return req.PaymentID != "" && req.AmountCents == 2500 && req.Email == "ana@example.com"
	})).Return(&provider.Checkout{ID: "chk_1", URL: "https://pay.example/chk_1"}, nil)
	repo.On("SetCheckout", mock.Anything, mock.Anything, "chk_1", "https://pay.example/chk_1").Return(nil)

	res, err := svc.StartCheckout(context.Background(), citizen, target)

	require.NoError(t, err)
	assert.NotEmpty(t, res.PaymentID)
	assert.Equal(t, "https://pay.example/chk_1", res.CheckoutURL)
	repo.AssertExpectations(t)
}

func TestStartCheckout_ReusesOpenCheckout(t *testing.T) {
	svc, repo, prov := newTestService()
	target := Target{InscripcionID: i64p(3)}

	repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(7), Status: "activa"}, nil)
	repo.On("PendingForTarget", mock.Anything, target).Return(&Payment{ID: "p-old", CheckoutURL: strp("https://pay.example/old")}, nil)

	res, err := svc.StartCheckout(context.Background(), citizen, target)

	require.NoError(t, err)
	assert.Equal(t, &CheckoutResult{PaymentID: "p-old", CheckoutURL: "https://pay.example/old"}, res)
	prov.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStartCheckout_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		actor    auth.Actor
		target   Target
		info     *TargetInfo
		infoErr  error
		expected error
	}{
		{"No target", citizen, Target{}, nil, nil, ErrInvalidTarget},
		{"Both targets", citizen, Target{ReservaID: i64p(1), InscripcionID: i64p(2)}, nil, nil, ErrInvalidTarget},
		{"Target missing", citizen, Target{ReservaID: i64p(1)}, nil, ErrTargetNotFound, ErrTargetNotFound},
		{"Someone else's booking", citizen, Target{ReservaID: i64p(1)}, &TargetInfo{OwnerID: i64p(99)}, nil, ErrForbidden},
		{"Anonymous booking", citizen, Target{ReservaID: i64p(1)}, &TargetInfo{}, nil, ErrForbidden},
		{"Already paid", citizen, Target{ReservaID: i64p(1)}, &TargetInfo{OwnerID: i64p(7), Paid: true}, nil, ErrAlreadyPaid},
		{"Cancelled", citizen, Target{ReservaID: i64p(1)}, &TargetInfo{OwnerID: i64p(7), Status: "cancelada"}, nil, ErrTargetCancelled},
		{"Admin still blocked by paid", auth.Actor{UID: 1, Role: auth.RoleAdmin}, Target{ReservaID: i64p(1)}, &TargetInfo{OwnerID: i64p(99), Paid: true}, nil, ErrAlreadyPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, prov := newTestService()
			if tt.info != nil || tt.infoErr != nil {
				repo.On("GetTarget", mock.Anything, tt.target).Return(tt.info, tt.infoErr)
			}

			res, err := svc.StartCheckout(context.Background(), tt.actor, tt.target)

			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, res)
			prov.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
		})
	}
}

func TestStartCheckout_ProviderFailure(t *testing.T) {
	svc, repo, prov := newTestService()
	target := Target{ReservaID: i64p(42)}

	repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(7), AmountCents: 100}, nil)
	repo.On("PendingForTarget", mock.Anything, target).Return(nil, nil)
	repo.On("ReleaseStale", mock.Anything, target, mock.Anything).Return(nil)
	var created string
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*Payment).ID
	}).Return(nil)
	prov.On("CreateCheckout", mock.Anything, mock.Anything).Return(nil, errors.New("503"))
	repo.On("Discard", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.StartCheckout(context.Background(), citizen, target)

	assert.ErrorIs(t, err, ErrUpstreamSync)
	assert.Nil(t, res)
	repo.AssertCalled(t, "Discard", mock.Anything, created)
	repo.AssertNotCalled(t, "SetCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartCheckout_ReleasesStaleRowsBeforeCreate(t *testing.T) {
	svc, repo, prov := newTestService()
	target := Target{ReservaID: i64p(42)}
	start := time.Now()

	repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(7), AmountCents: 100}, nil)
	repo.On("PendingForTarget", mock.Anything, target).Return(nil, nil)
	repo.On("ReleaseStale", mock.Anything, target, mock.MatchedBy(func(before time.Time) bool {
		return before.Before(start.Add(-time.Second))
	})).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	prov.On("CreateCheckout", mock.Anything, mock.Anything).Return(&provider.Checkout{ID: "chk_1", URL: "u"}, nil)
	repo.On("SetCheckout", mock.Anything, mock.Anything, "chk_1", "u").Return(nil)

	_, err := svc.StartCheckout(context.Background(), citizen, target)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStartCheckout_ConcurrentStartReusesWinner(t *testing.T) {
	svc, repo, prov := newTestService()
	target := Target{ReservaID: i64p(42)}

	repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(7), AmountCents: 100}, nil)
	repo.On("PendingForTarget", mock.Anything, target).Return(nil, nil).Once()
	repo.On("ReleaseStale", mock.Anything, target, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrCheckoutInProgress)
	repo.On("PendingForTarget", mock.Anything, target).Return(&Payment{ID: "p-win", CheckoutURL: strp("https://pay/win")}, nil).Once()

	res, err := svc.StartCheckout(context.Background(), citizen, target)

	require.NoError(t, err)
	assert.Equal(t, &CheckoutResult{PaymentID: "p-win", CheckoutURL: "https://pay/win"}, res)
	prov.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
}

func TestStartCheckout_ConcurrentStartStillOpening(t *testing.T) {
	svc, repo, prov := newTestService()
	target := Target{ReservaID: i64p(42)}

	repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(7), AmountCents: 100}, nil)
	repo.On("PendingForTarget", mock.Anything, target).Return(nil, nil)
	repo.On("ReleaseStale", mock.Anything, target, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrCheckoutInProgress)

	res, err := svc.StartCheckout(context.Background(), citizen, target)

	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Nil(t, res)
	prov.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
}

func TestReconcileFor(t *testing.T) {
	paid := &Payment{ID: "p1", Status: StatusPaid, ReservaID: i64p(42)}
	target := Target{ReservaID: i64p(42)}

	t.Run("Owner", func(t *testing.T) {
		svc, repo, prov := newTestService()
		repo.On("GetByID", mock.Anything, "p1").Return(paid, nil)
		repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(7)}, nil)

		res, err := svc.ReconcileFor(context.Background(), citizen, "p1")

		require.NoError(t, err)
		assert.Equal(t, StatusPaid, res.Status)
		prov.AssertNotCalled(t, "GetCheckout", mock.Anything, mock.Anything)
	})

	t.Run("Someone else", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("GetByID", mock.Anything, "p1").Return(paid, nil)
		repo.On("GetTarget", mock.Anything, target).Return(&TargetInfo{OwnerID: i64p(99)}, nil)

		res, err := svc.ReconcileFor(context.Background(), citizen, "p1")

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, res)
	})

	t.Run("Unlinked payment", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("GetByID", mock.Anything, "p1").Return(&Payment{ID: "p1", Status: StatusPending}, nil)

		_, err := svc.ReconcileFor(context.Background(), citizen, "p1")

		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "GetTarget", mock.Anything, mock.Anything)
	})

	t.Run("Worker skips ownership", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("GetByID", mock.Anything, "p1").Return(paid, nil)

		res, err := svc.ReconcileFor(context.Background(), auth.Actor{UID: 3, Role: auth.RoleWorker}, "p1")

		require.NoError(t, err)
		assert.Equal(t, "p1", res.PaymentID)
		repo.AssertNotCalled(t, "GetTarget", mock.Anything, mock.Anything)
	})

	t.Run("Blank id", func(t *testing.T) {
		svc, repo, _ := newTestService()

		_, err := svc.ReconcileFor(context.Background(), citizen, "  ")

		assert.ErrorIs(t, err, ErrInvalidPaymentID)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
