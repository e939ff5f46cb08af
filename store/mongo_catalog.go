package store

import (
	"context"
	"errors"
	"fmt"
	"go-shop/models"
	"go-shop/services"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCatalog reads current product facts from the products collection.
// Every lookup hits the collection; facts are never cached across calls.
type MongoCatalog struct {
	col *mongo.Collection
}

// NewMongoCatalog creates a new MongoCatalog
func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{col: db.Collection("products")}
}

// LookupProducts returns price and availability for the given ids. Unknown
// ids are simply absent from the result.
func (c *MongoCatalog) LookupProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]services.ProductFact, error) {
	facts := make(map[primitive.ObjectID]services.ProductFact, len(ids))
	if len(ids) == 0 {
		return facts, nil
	}

	cursor, err := c.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("decoding product: %w", err)
		}
		facts[p.ID] = services.ProductFact{
			Title:     p.Title,
			UnitPrice: decimal.NewFromFloat(p.Price),
			Available: p.Available,
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	return facts, nil
}

// MongoUserStore resolves actors and applies profile patches.
type MongoUserStore struct {
	col *mongo.Collection
}

// NewMongoUserStore creates a new MongoUserStore
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection("users")}
}

// ResolveActor maps an authenticated email to the user's id.
func (s *MongoUserStore) ResolveActor(ctx context.Context, email string) (primitive.ObjectID, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, fmt.Errorf("%w: user %s", services.ErrNotFound, email)
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("fetching user: %w", err)
	}
	return user.ID, nil
}

// UpdateProfile applies the present fields of the patch to the user.
func (s *MongoUserStore) UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch services.ProfilePatch) error {
	set := bson.M{}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", services.ErrNotFound, userID.Hex())
	}
	return nil
}
