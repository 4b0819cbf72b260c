package services_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/services"
	"github.com/shashiranjanraj/vanijya/pkg/apperr"
)

const gwSecret = "rzp_test_secret"

func newPaymentService(store *fakePayStore, gw *fakeGateway) *services.PaymentService {
	// nil cache is a no-op, so tests never need Redis.
	return services.NewPaymentService(store, gw, nil, gwSecret, "INR")
}

func sigFor(orderID, paymentID string) string {
	return testSignature(gwSecret, orderID, paymentID)
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	store := &fakePayStore{}
	gw := &fakeGateway{nextOrderID: "order_MhT4vH"}
	svc := newPaymentService(store, gw)

	created, err := svc.CreateOrder(context.Background(), 499.00, "INR", "alice@x.com", "Alice")
	require.NoError(t, err)

	assert.Equal(t, int64(49900), gw.gotAmount, "gateway must receive paise")
	assert.Equal(t, "order_MhT4vH", created.OrderID)
	assert.Equal(t, 499.00, created.Amount)

	require.Len(t, store.orders, 1)
	persisted := store.orders[0]
	assert.Equal(t, 499.00, persisted.Amount, "persisted amount stays in decimal units")
	assert.Equal(t, models.PaymentPending, persisted.Status)
	assert.Equal(t, "alice@x.com", persisted.OwnerEmail)
	assert.False(t, persisted.CreatedAt.IsZero())
}

func TestCreateOrderRoundsFractionalPaise(t *testing.T) {
	gw := &fakeGateway{nextOrderID: "order_x"}
	svc := newPaymentService(&fakePayStore{}, gw)

	_, err := svc.CreateOrder(context.Background(), 10.995, "", "a@x.com", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1100), gw.gotAmount)
	assert.Equal(t, "INR", gw.gotCurrency, "empty currency falls back to the default")
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	svc := newPaymentService(&fakePayStore{}, &fakeGateway{nextOrderID: "order_x"})

	_, err := svc.CreateOrder(context.Background(), 0, "INR", "a@x.com", "A")
	assert.True(t, apperr.IsKind(err, apperr.Validation), "want Validation, got %v", err)
}

func TestCreateOrderGatewayFailureIsUpstream(t *testing.T) {
	store := &fakePayStore{}
	svc := newPaymentService(store, &fakeGateway{createErr: errStoreDown})

	_, err := svc.CreateOrder(context.Background(), 100, "INR", "a@x.com", "A")
	assert.True(t, apperr.IsKind(err, apperr.Upstream), "want Upstream, got %v", err)
	assert.Empty(t, store.orders)
}

func seedPending(t *testing.T, store *fakePayStore, orderID string) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &models.PaymentOrder{
		OrderID:    orderID,
		Amount:     499.00,
		Currency:   "INR",
		Status:     models.PaymentPending,
		OwnerEmail: "alice@x.com",
	}))
}

func TestVerifyPaymentValidSignatureTransitionsToPaid(t *testing.T) {
	store := &fakePayStore{}
	svc := newPaymentService(store, &fakeGateway{})
	seedPending(t, store, "order_abc")

	err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", sigFor("order_abc", "pay_xyz"))
	require.NoError(t, err)

	order := store.orders[0]
	assert.Equal(t, models.PaymentPaid, order.Status)
	assert.Equal(t, "pay_xyz", order.PaymentID)
	require.NotNil(t, order.PaidAt)
}

func TestVerifyPaymentReplayIsNoOp(t *testing.T) {
	store := &fakePayStore{}
	svc := newPaymentService(store, &fakeGateway{})
	seedPending(t, store, "order_abc")
	ctx := context.Background()

	sig := sigFor("order_abc", "pay_xyz")
	require.NoError(t, svc.VerifyPayment(ctx, "order_abc", "pay_xyz", sig))
	firstPaidAt := *store.orders[0].PaidAt

	// Same correct signature again: state-wise no-op, no error.
	require.NoError(t, svc.VerifyPayment(ctx, "order_abc", "pay_xyz", sig))
	assert.Equal(t, models.PaymentPaid, store.orders[0].Status)
	assert.Equal(t, firstPaidAt, *store.orders[0].PaidAt)
}

func TestVerifyPaymentBadSignatureFailsOrder(t *testing.T) {
	store := &fakePayStore{}
	svc := newPaymentService(store, &fakeGateway{})
	seedPending(t, store, "order_abc")

	err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", "deadbeef")
	assert.True(t, apperr.IsKind(err, apperr.Validation), "want Validation, got %v", err)
	assert.Equal(t, models.PaymentFailed, store.orders[0].Status)
}

func TestVerifyPaymentNeverRevivesTerminalStates(t *testing.T) {
	store := &fakePayStore{}
	svc := newPaymentService(store, &fakeGateway{})
	ctx := context.Background()

	// failed → paid is forbidden even with a valid signature.
	seedPending(t, store, "order_failed")
	require.Error(t, svc.VerifyPayment(ctx, "order_failed", "pay_1", "bogus"))
	err := svc.VerifyPayment(ctx, "order_failed", "pay_1", sigFor("order_failed", "pay_1"))
	assert.Error(t, err)
	assert.Equal(t, models.PaymentFailed, store.orders[0].Status)

	// paid → failed is forbidden even with a bad signature.
	seedPending(t, store, "order_paid")
	require.NoError(t, svc.VerifyPayment(ctx, "order_paid", "pay_2", sigFor("order_paid", "pay_2")))
	require.Error(t, svc.VerifyPayment(ctx, "order_paid", "pay_2", "bogus"))
	assert.Equal(t, models.PaymentPaid, store.orders[1].Status)
}

func TestVerifyPaymentUnknownOrderIsNotFound(t *testing.T) {
	svc := newPaymentService(&fakePayStore{}, &fakeGateway{})

	err := svc.VerifyPayment(context.Background(), "order_ghost", "pay_x", sigFor("order_ghost", "pay_x"))
	assert.True(t, apperr.IsKind(err, apperr.NotFound), "want NotFound, got %v", err)
}

func TestPaymentDetailPassthrough(t *testing.T) {
	gw := &fakeGateway{payment: map[string]interface{}{"id": "pay_abc", "status": "captured"}}
	svc := newPaymentService(&fakePayStore{}, gw)

	detail, err := svc.PaymentDetail(context.Background(), "pay_abc")
	require.NoError(t, err)
	assert.Equal(t, "captured", detail["status"])
	assert.Equal(t, 1, gw.fetches)
}

func TestPaymentDetailGatewayFailureIsUpstream(t *testing.T) {
	svc := newPaymentService(&fakePayStore{}, &fakeGateway{fetchErr: errStoreDown})

	_, err := svc.PaymentDetail(context.Background(), "pay_abc")
	assert.True(t, apperr.IsKind(err, apperr.Upstream), "want Upstream, got %v", err)
}

func TestListMineFiltersByOwnerNewestFirst(t *testing.T) {
	store := &fakePayStore{}
	svc := newPaymentService(store, &fakeGateway{})
	ctx := context.Background()

	for _, o := range []models.PaymentOrder{
		{OrderID: "o1", OwnerEmail: "alice@x.com", Status: models.PaymentPending},
		{OrderID: "o2", OwnerEmail: "bob@x.com", Status: models.PaymentPending},
		{OrderID: "o3", OwnerEmail: "alice@x.com", Status: models.PaymentPending},
	} {
		order := o
		require.NoError(t, store.Create(ctx, &order))
	}

	mine, err := svc.ListMine(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o3", mine[0].OrderID)
	assert.Equal(t, "o1", mine[1].OrderID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "o3", all[0].OrderID)
}

// testSignature mirrors Razorpay's signing scheme: hex HMAC-SHA256 over
// "<order_id>|<payment_id>" keyed with the API secret.
func testSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
