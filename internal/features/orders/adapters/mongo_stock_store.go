package adapters

import (
	"context"
	"errors"
	"fmt"

	"storefront-api/internal/features/orders/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const productsCollection = "products"

// MongoStockStore implements ports.ProductStockStore on the products collection.
type MongoStockStore struct {
	col *mongo.Collection
}

// NewMongoStockStore creates a stock store over the products collection of db.
func NewMongoStockStore(db *mongo.Database) *MongoStockStore {
	return &MongoStockStore{
		col: db.Collection(productsCollection),
	}
}

// DecrementStock subtracts qty atomically, guarded by totalStock >= qty.
// The guard lives in the filter, so a concurrent decrement cannot drive the
// stock below zero; there is no separate read-check-write window.
func (s *MongoStockStore) DecrementStock(ctx context.Context, productID string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return domain.ErrProductNotFound
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid, "totalStock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"totalStock": -qty}},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if res.ModifiedCount == 1 {
		return nil
	}

	// The guard rejected the update: distinguish a missing product from
	// insufficient stock.
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect product: %w", err)
	}
	return domain.ErrInsufficientStock
}

// IncrementStock adds qty back, compensating a decrement after a failed capture.
func (s *MongoStockStore) IncrementStock(ctx context.Context, productID string, qty int) error {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return domain.ErrProductNotFound
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"totalStock": qty}},
	)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
