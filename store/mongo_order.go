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

// MongoOrderStore persists orders. Checkout binds the order to the user's
// current cart inside one transaction, so a cart lookup failure never
// leaves a half-created order.
type MongoOrderStore struct {
	client *mongo.Client
	orders *mongo.Collection
	carts  *mongo.Collection
}

// NewMongoOrderStore creates a new MongoOrderStore
func NewMongoOrderStore(client *mongo.Client, db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		client: client,
		orders: db.Collection("orders"),
		carts:  db.Collection("carts"),
	}
}

// Get returns an order by id.
func (s *MongoOrderStore) Get(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, fmt.Errorf("%w: order %s", services.ErrNotFound, orderID.Hex())
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("fetching order: %w", err)
	}
	return order, nil
}

// ListByUser returns the user's orders, oldest first.
func (s *MongoOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.orders.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}
	return orders, nil
}

// Create looks up the user's cart and inserts the order bound to it, both
// inside one transaction. The cart is left untouched: not cleared, not
// copied. ErrNoCart if the user has no cart.
func (s *MongoOrderStore) Create(ctx context.Context, order models.Order) (primitive.ObjectID, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	id, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var cart models.Cart
		err := s.carts.FindOne(sc, bson.M{"user_id": order.UserID}).Decode(&cart)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", services.ErrNoCart, order.UserID.Hex())
		}
		if err != nil {
			return nil, fmt.Errorf("fetching cart: %w", err)
		}

		order.CartID = &cart.ID
		res, err := s.orders.InsertOne(sc, order)
		if err != nil {
			return nil, fmt.Errorf("inserting order: %w", err)
		}
		return res.InsertedID, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return id.(primitive.ObjectID), nil
}

// Save persists updated order fields. The cart binding is deliberately
// not part of the update document.
func (s *MongoOrderStore) Save(ctx context.Context, order models.Order) error {
	res, err := s.orders.UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": bson.M{
		"delivery_type": order.DeliveryType,
		"payment_type":  order.PaymentType,
		"status":        order.Status,
		"city":          order.City,
		"address":       order.Address,
		"total_cost":    order.TotalCost,
	}})
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: order %s", services.ErrNotFound, order.ID.Hex())
	}
	return nil
}
