package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/features/orders/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

// MongoOrderRepository implements ports.OrderRepository on a MongoDB collection.
type MongoOrderRepository struct {
	col *mongo.Collection
}

// NewMongoOrderRepository creates a repository over the orders collection of db.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		col: db.Collection(ordersCollection),
	}
}

// Insert persists a new order and returns its generated id.
func (r *MongoOrderRepository) Insert(ctx context.Context, order *domain.Order) (string, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, order); err != nil {
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	return order.ID.Hex(), nil
}

// SetTransactionID stamps the gateway transaction uuid onto the order.
func (r *MongoOrderRepository) SetTransactionID(ctx context.Context, orderID, transactionID string) error {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"esewaTransactionId": transactionID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set transaction id: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s vanished while setting transaction id", orderID)
	}
	return nil
}

// FindByID returns the order, or nil when the id does not resolve.
func (r *MongoOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		// A malformed id cannot match any order.
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByTransactionID returns the order holding the given transaction uuid.
func (r *MongoOrderRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"esewaTransactionId": transactionID})
}

func (r *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var order domain.Order
	err := r.col.FindOne(ctx, filter).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// FindByUser returns all orders owned by userID, newest first.
func (r *MongoOrderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// MarkPaid performs the conditional pending-to-paid transition. The filter
// matches only a payment-pending order, so of two concurrent captures exactly
// one observes ModifiedCount == 1 and proceeds with side effects.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, orderID, gatewayRef string, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, fmt.Errorf("invalid order id %q: %w", orderID, err)
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "paymentStatus": domain.PaymentPending},
		bson.M{"$set": bson.M{
			"paymentStatus":   domain.PaymentPaid,
			"orderStatus":     domain.StatusConfirmed,
			"esewaPaymentId":  gatewayRef,
			"paymentDate":     at,
			"orderUpdateDate": at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// RevertPaid returns the order to the pending payment state after a failed
// capture, clearing the payment stamps set by MarkPaid.
func (r *MongoOrderRepository) RevertPaid(ctx context.Context, orderID string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}

	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "paymentStatus": domain.PaymentPaid},
		bson.M{
			"$set": bson.M{
				"paymentStatus":   domain.PaymentPending,
				"orderStatus":     domain.StatusPending,
				"orderUpdateDate": at,
			},
			"$unset": bson.M{
				"esewaPaymentId": "",
				"paymentDate":    "",
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to revert order: %w", err)
	}
	return nil
}
