package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/vanijya/app/models"
)

// PaymentRepository handles the payments collection. Status transitions are
// guarded by conditional updates: the filter matches only status "pending",
// so per-document atomicity makes paid and failed terminal.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection("payments")}
}

func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "owner_email", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	return err
}

// Create persists a new pending order and fills in its generated ID.
func (r *PaymentRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// FindByOrderID looks up an order by the gateway-assigned ID.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var order models.PaymentOrder
	err := r.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid moves a pending order to paid, recording the payment details.
// Returns false when no pending order matched, i.e. the order is unknown or
// already terminal; the caller decides whether that is a replay or an error.
func (r *PaymentRepository) MarkPaid(ctx context.Context, orderID, paymentID, signature string, paidAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"order_id": orderID, "status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"status":     models.PaymentPaid,
			"payment_id": paymentID,
			"signature":  signature,
			"paid_at":    paidAt,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// MarkFailed moves a pending order to failed. Terminal orders are untouched.
func (r *PaymentRepository) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"order_id": orderID, "status": models.PaymentPending},
		bson.M{"$set": bson.M{"status": models.PaymentFailed}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// All returns every order, newest first.
func (r *PaymentRepository) All(ctx context.Context) ([]models.PaymentOrder, error) {
	return r.find(ctx, bson.M{})
}

// ByOwner returns the orders owned by email, newest first.
func (r *PaymentRepository) ByOwner(ctx context.Context, email string) ([]models.PaymentOrder, error) {
	return r.find(ctx, bson.M{"owner_email": email})
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M) ([]models.PaymentOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []models.PaymentOrder
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
