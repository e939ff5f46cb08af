package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents one product line in a cart. A line item exists only
// while its quantity is positive; removing the last unit deletes the line.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart represents a user's shopping cart. One cart per user, at most one
// line item per product.
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items  []CartItem         `bson:"items" json:"items"`
}
