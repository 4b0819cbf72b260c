// Package gateway is the Razorpay client: order creation, payment lookup,
// and callback signature verification.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	vhttp "github.com/shashiranjanraj/vanijya/pkg/http"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// Order is the gateway's representation of a created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay REST API with basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	timeout   time.Duration
}

// NewClient creates a Client with the given API credentials.
func NewClient(keyID, keySecret string) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		timeout:   10 * time.Second,
	}
}

// WithBaseURL overrides the API endpoint, e.g. for tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// CreateOrder asks the gateway to create an order for amount minor units.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	resp, err := vhttp.Post(c.baseURL+"/orders").
		WithContext(ctx).
		BasicAuth(c.keyID, c.keySecret).
		Body(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
			"receipt":  receipt,
		}).
		Timeout(c.timeout).
		Retry(2, 500*time.Millisecond).
		Send()
	if err != nil {
		return nil, fmt.Errorf("gateway: create order: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("gateway: create order: %w", err)
	}

	var order Order
	if err := resp.JSON(&order); err != nil {
		return nil, fmt.Errorf("gateway: create order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway: create order: response missing order id")
	}
	return &order, nil
}

// FetchPayment returns the live payment detail document for paymentID.
// The body is passed through untouched, so the shape follows the gateway.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	resp, err := vhttp.Get(c.baseURL+"/payments/"+paymentID).
		WithContext(ctx).
		BasicAuth(c.keyID, c.keySecret).
		Timeout(c.timeout).
		Send()
	if err != nil {
		return nil, fmt.Errorf("gateway: fetch payment %s: %w", paymentID, err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("gateway: fetch payment %s: %w", paymentID, err)
	}

	var detail map[string]interface{}
	if err := resp.JSON(&detail); err != nil {
		return nil, fmt.Errorf("gateway: fetch payment %s: %w", paymentID, err)
	}
	return detail, nil
}

// VerifySignature checks a payment-callback signature against the gateway's
// documented scheme: hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
// The comparison is constant-time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
