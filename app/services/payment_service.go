package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shashiranjanraj/vanijya/app/gateway"
	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/repositories"
	"github.com/shashiranjanraj/vanijya/pkg/apperr"
	"github.com/shashiranjanraj/vanijya/pkg/cache"
	"github.com/shashiranjanraj/vanijya/pkg/logger"
	"github.com/shashiranjanraj/vanijya/pkg/metrics"
)

// detailCacheTTL bounds gateway load on the payment-detail passthrough.
const detailCacheTTL = 30 * time.Second

// PaymentStore is the persistence contract for payment orders.
type PaymentStore interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	MarkPaid(ctx context.Context, orderID, paymentID, signature string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, orderID string) (bool, error)
	All(ctx context.Context) ([]models.PaymentOrder, error)
	ByOwner(ctx context.Context, email string) ([]models.PaymentOrder, error)
}

// PaymentGateway is the slice of the gateway client the service needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
}

// CreatedOrder is what the create-order endpoint returns to the caller.
type CreatedOrder struct {
	OrderID  string  `json:"orderId"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// PaymentService implements the order lifecycle: create, verify, query.
type PaymentService struct {
	store           PaymentStore
	gw              PaymentGateway
	cache           *cache.Cache
	secret          string
	defaultCurrency string
}

func NewPaymentService(store PaymentStore, gw PaymentGateway, c *cache.Cache, secret, defaultCurrency string) *PaymentService {
	return &PaymentService{
		store:           store,
		gw:              gw,
		cache:           c,
		secret:          secret,
		defaultCurrency: defaultCurrency,
	}
}

// CreateOrder converts amount to minor units, creates the gateway order, and
// persists a pending record keyed by the gateway-assigned order id.
func (s *PaymentService) CreateOrder(ctx context.Context, amount float64, currency, ownerEmail, ownerName string) (*CreatedOrder, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.Validation, "amount must be positive")
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	minor := int64(math.Round(amount * 100))
	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixNano())

	gwOrder, err := s.gw.CreateOrder(ctx, minor, currency, receipt)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "gateway order creation failed", err)
	}

	order := &models.PaymentOrder{
		OrderID:    gwOrder.ID,
		Amount:     amount,
		Currency:   currency,
		Status:     models.PaymentPending,
		OwnerEmail: ownerEmail,
		OwnerName:  ownerName,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to store order", err)
	}

	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("payment order created",
		"order_id", order.OrderID, "amount", amount, "currency", currency)

	return &CreatedOrder{OrderID: order.OrderID, Currency: currency, Amount: amount}, nil
}

// VerifyPayment checks the callback signature and applies the one allowed
// transition. A valid signature on an already-paid order with the same
// payment is a state no-op and succeeds, so gateway callback retries are
// harmless.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error {
	if !gateway.VerifySignature(orderID, paymentID, signature, s.secret) {
		if _, err := s.store.MarkFailed(ctx, orderID); err != nil {
			logger.WithCtx(ctx).Error("failed to mark order failed", "order_id", orderID, "error", err)
		}
		metrics.Verifications.WithLabelValues("failed").Inc()
		return apperr.New(apperr.Validation, "signature verification failed")
	}

	transitioned, err := s.store.MarkPaid(ctx, orderID, paymentID, signature, time.Now().UTC())
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to update order", err)
	}
	if transitioned {
		metrics.Verifications.WithLabelValues("paid").Inc()
		logger.WithCtx(ctx).Info("payment verified", "order_id", orderID, "payment_id", paymentID)
		return nil
	}

	// Nothing matched pending: the order is unknown or already terminal.
	order, err := s.store.FindByOrderID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to look up order", err)
	}

	if order.Status == models.PaymentPaid && order.PaymentID == paymentID {
		metrics.Verifications.WithLabelValues("replayed").Inc()
		return nil
	}
	return apperr.New(apperr.Conflict, "order is not payable")
}

// PaymentDetail fetches live payment detail from the gateway, with a short
// Redis cache in front. No local state changes.
func (s *PaymentService) PaymentDetail(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	key := "payment:" + paymentID

	var detail map[string]interface{}
	if s.cache.Get(ctx, key, &detail) {
		return detail, nil
	}

	detail, err := s.gw.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "gateway payment lookup failed", err)
	}

	if err := s.cache.Set(ctx, key, detail, detailCacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("payment detail cache write failed", "payment_id", paymentID, "error", err)
	}
	return detail, nil
}

// ListAll returns every persisted order, newest first.
func (s *PaymentService) ListAll(ctx context.Context) ([]models.PaymentOrder, error) {
	orders, err := s.store.All(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list orders", err)
	}
	return orders, nil
}

// ListMine returns the caller's orders, newest first.
func (s *PaymentService) ListMine(ctx context.Context, email string) ([]models.PaymentOrder, error) {
	orders, err := s.store.ByOwner(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list orders", err)
	}
	return orders, nil
}
