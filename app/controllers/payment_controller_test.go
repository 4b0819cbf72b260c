package controllers_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vanijya/app/models"
)

func validSig(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte("rzp_secret"))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderReturnsOrder(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/payment/create-order", "", map[string]interface{}{
		"amount": 499.00, "currency": "INR",
		"userEmail": "alice@x.com", "userName": "Alice",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "order_test1", data["orderId"])
	assert.Equal(t, 499.00, data["amount"])

	require.Len(t, app.payments.orders, 1)
	assert.Equal(t, models.PaymentPending, app.payments.orders[0].Status)
}

func TestCreateOrderValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/payment/create-order", "", map[string]interface{}{
		"amount": -5, "userEmail": "alice@x.com", "userName": "Alice",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateOrderGatewayFailureIsServerError(t *testing.T) {
	app := newTestApp(t)
	app.gw.createErr = assert.AnError

	rec := app.do(t, http.MethodPost, "/payment/create-order", "", map[string]interface{}{
		"amount": 100.0, "userEmail": "alice@x.com", "userName": "Alice",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVerifyPaymentStatusCodes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/payment/create-order", "", map[string]interface{}{
		"amount": 100.0, "userEmail": "alice@x.com", "userName": "Alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Bad signature fails the order.
	rec = app.do(t, http.MethodPost, "/payment/verify-payment", "", map[string]string{
		"orderId": "order_test1", "paymentId": "pay_1", "signature": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.PaymentFailed, app.payments.orders[0].Status)

	// A failed order cannot be paid afterwards.
	rec = app.do(t, http.MethodPost, "/payment/verify-payment", "", map[string]string{
		"orderId": "order_test1", "paymentId": "pay_1", "signature": validSig("order_test1", "pay_1"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.PaymentFailed, app.payments.orders[0].Status)
}

func TestVerifyPaymentHappyPath(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/payment/create-order", "", map[string]interface{}{
		"amount": 100.0, "userEmail": "alice@x.com", "userName": "Alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	verify := map[string]string{
		"orderId": "order_test1", "paymentId": "pay_1",
		"signature": validSig("order_test1", "pay_1"),
	}
	rec = app.do(t, http.MethodPost, "/payment/verify-payment", "", verify)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.PaymentPaid, app.payments.orders[0].Status)

	// Callback retry with the same payload still succeeds.
	rec = app.do(t, http.MethodPost, "/payment/verify-payment", "", verify)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaymentDetailRoute(t *testing.T) {
	app := newTestApp(t)
	app.gw.payment = map[string]interface{}{"id": "pay_9", "status": "captured"}

	rec := app.do(t, http.MethodGet, "/payment/pay_9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "captured", data["status"])
}

func TestPaymentListingsRequireToken(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/payments", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/my-payments", "", nil).Code)

	token := app.signupAndLogin(t, "Alice", "alice@x.com", "hunter22")
	for _, order := range []models.PaymentOrder{
		{OrderID: "o1", OwnerEmail: "alice@x.com", Status: models.PaymentPending},
		{OrderID: "o2", OwnerEmail: "bob@x.com", Status: models.PaymentPending},
	} {
		o := order
		app.payments.orders = append(app.payments.orders, &o)
	}

	rec := app.do(t, http.MethodGet, "/payments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"].([]interface{}), 2)

	rec = app.do(t, http.MethodGet, "/my-payments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode(t, rec)["data"].([]interface{})
	require.Len(t, mine, 1)
	assert.Equal(t, "o1", mine[0].(map[string]interface{})["orderId"])
}
