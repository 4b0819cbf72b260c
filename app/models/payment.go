package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is the lifecycle state of a payment order.
// Transitions are pending→paid and pending→failed only; both are terminal.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentOrder is a persisted gateway order and its verification outcome.
// Amount is in decimal currency units; the gateway speaks minor units.
type PaymentOrder struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"        json:"id"`
	OrderID    string             `bson:"order_id"             json:"orderId"`
	PaymentID  string             `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	Signature  string             `bson:"signature,omitempty"  json:"signature,omitempty"`
	Amount     float64            `bson:"amount"               json:"amount"`
	Currency   string             `bson:"currency"             json:"currency"`
	Status     PaymentStatus      `bson:"status"               json:"status"`
	OwnerEmail string             `bson:"owner_email"          json:"ownerEmail"`
	OwnerName  string             `bson:"owner_name"           json:"ownerName"`
	CreatedAt  time.Time          `bson:"created_at"           json:"createdAt"`
	PaidAt     *time.Time         `bson:"paid_at,omitempty"    json:"paidAt,omitempty"`
}
