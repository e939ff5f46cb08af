package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog product. Price is the current unit price;
// totals are always computed against it at read time, never against a
// stored snapshot.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Price        float64            `bson:"price" json:"price"`
	Count        int                `bson:"count" json:"count"`
	FreeDelivery bool               `bson:"free_delivery" json:"freeDelivery"`
	Available    bool               `bson:"available" json:"available"`
	CreatedAt    time.Time          `bson:"created_at" json:"date"`
}
