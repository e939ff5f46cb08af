package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentCard represents a stored payment card. Card numbers are unique
// across owners. No gateway integration exists; the record is profile data.
type PaymentCard struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Owner  primitive.ObjectID `bson:"owner" json:"owner"`
	Number string             `bson:"number" json:"number"`
	Name   string             `bson:"name" json:"name"`
	Month  string             `bson:"month" json:"month"`
	Year   string             `bson:"year" json:"year"`
	Code   string             `bson:"code" json:"code"`
}
