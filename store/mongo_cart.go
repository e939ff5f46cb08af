package store

import (
	"context"
	"errors"
	"fmt"
	"go-shop/models"
	"go-shop/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// addItemAttempts bounds the retry loop for the insert race on a brand-new
// line item; each retry re-runs the atomic increment first.
const addItemAttempts = 3

// MongoCartStore keeps one cart document per user, line items embedded.
// All mutations are single-document updates, which mongo applies
// atomically, so concurrent add/remove calls for the same (cart, product)
// never lose updates.
type MongoCartStore struct {
	col *mongo.Collection
}

// NewMongoCartStore creates a new MongoCartStore
func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{col: db.Collection("carts")}
}

// Get returns the user's cart.
func (s *MongoCartStore) Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := s.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, fmt.Errorf("%w: cart for user %s", services.ErrNotFound, userID.Hex())
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("fetching cart: %w", err)
	}
	return cart, nil
}

// GetByID returns a cart by its own id.
func (s *MongoCartStore) GetByID(ctx context.Context, cartID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := s.col.FindOne(ctx, bson.M{"_id": cartID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, fmt.Errorf("%w: cart %s", services.ErrNotFound, cartID.Hex())
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("fetching cart: %w", err)
	}
	return cart, nil
}

// AddItem merges qty units into the user's cart as one atomic update:
// first an $inc on an existing line item, otherwise a guarded $push that
// upserts the cart. Two concurrent first-adds of the same product collide
// on the unique user_id index; the loser retries and lands on the $inc.
func (s *MongoCartStore) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	for attempt := 0; attempt < addItemAttempts; attempt++ {
		res, err := s.col.UpdateOne(ctx,
			bson.M{"user_id": userID, "items.product_id": productID},
			bson.M{"$inc": bson.M{"items.$.quantity": qty}},
		)
		if err != nil {
			return models.Cart{}, fmt.Errorf("incrementing line item: %w", err)
		}
		if res.ModifiedCount > 0 {
			return s.Get(ctx, userID)
		}

		// No line item for this product yet. The $ne guard keeps a
		// concurrent push from producing a second line for the product.
		_, err = s.col.UpdateOne(ctx,
			bson.M{"user_id": userID, "items.product_id": bson.M{"$ne": productID}},
			bson.M{
				"$push":        bson.M{"items": bson.M{"product_id": productID, "quantity": qty}},
				"$setOnInsert": bson.M{"user_id": userID},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return s.Get(ctx, userID)
		}
		if !mongo.IsDuplicateKeyError(err) {
			return models.Cart{}, fmt.Errorf("appending line item: %w", err)
		}
		// Lost the upsert race; the cart now exists, retry the $inc path.
	}
	return models.Cart{}, fmt.Errorf("adding item to cart for user %s: retries exhausted", userID.Hex())
}

// RemoveItem decrements or deletes the line item in one guarded pipeline
// update. The filter only matches when the line holds at least qty units,
// so a conflicting or missing removal changes nothing; the follow-up read
// then classifies the rejection.
func (s *MongoCartStore) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	filter := bson.M{
		"user_id": userID,
		"items": bson.M{"$elemMatch": bson.M{
			"product_id": productID,
			"quantity":   bson.M{"$gte": qty},
		}},
	}
	// Decrement the matching line, then drop any line at zero. One
	// pipeline, one document, one atomic application.
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"items": bson.M{"$filter": bson.M{
				"input": bson.M{"$map": bson.M{
					"input": "$items",
					"as":    "it",
					"in": bson.M{"$cond": bson.A{
						bson.M{"$eq": bson.A{"$$it.product_id", productID}},
						bson.M{
							"product_id": "$$it.product_id",
							"quantity":   bson.M{"$subtract": bson.A{"$$it.quantity", qty}},
						},
						"$$it",
					}},
				}},
				"as":   "it",
				"cond": bson.M{"$gt": bson.A{"$$it.quantity", 0}},
			}},
		}}},
	}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.Cart{}, fmt.Errorf("removing line item: %w", err)
	}
	if res.MatchedCount > 0 {
		return s.Get(ctx, userID)
	}

	// Nothing matched: no cart, no line item, or fewer units than asked.
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return models.Cart{}, fmt.Errorf("%w: cart holds %d of product %s, removal of %d requested",
				services.ErrConflict, item.Quantity, productID.Hex(), qty)
		}
	}
	return models.Cart{}, fmt.Errorf("%w: product %s not in cart", services.ErrNotFound, productID.Hex())
}
