package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery type, payment type and status selectors stored on an order.
// String inputs from the API are translated to these values; see
// services/order.go for the mappings.
const (
	DeliveryStandard = 1
	DeliveryExpress  = 2

	PaymentOnlineCard    = 1
	PaymentOnlineAccount = 2

	StatusAwaitingPayment = 1
	StatusPaid            = 2
)

// Order represents a checkout record. It binds to exactly one cart and is
// never repointed at another. CartID is nullable only to tolerate legacy
// documents; new orders always carry a cart.
//
// TotalCost is advisory. The authoritative total is recomputed from the
// bound cart's live line items and current catalog prices on every read.
type Order struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"`
	CartID       *primitive.ObjectID `bson:"cart_id,omitempty" json:"cart_id,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
	DeliveryType int                 `bson:"delivery_type" json:"deliveryType"`
	PaymentType  int                 `bson:"payment_type" json:"paymentType"`
	Status       int                 `bson:"status" json:"status"`
	City         string              `bson:"city" json:"city"`
	Address      string              `bson:"address" json:"address"`
	TotalCost    float64             `bson:"total_cost" json:"totalCost"`
}
