package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductFact is the current price and availability of one product, valid
// at read time only. Facts are re-fetched for every computation, never
// cached across requests.
type ProductFact struct {
	Title     string
	UnitPrice decimal.Decimal
	Available bool
}

// Catalog is the read-only product lookup the cart and order services
// depend on. Unknown ids are simply absent from the result; the caller
// decides whether that is a NotFound or an ignore.
type Catalog interface {
	LookupProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]ProductFact, error)
}

// Identity resolves the authenticated actor behind a request to a user id.
// Every cart and order operation is scoped to the resolved actor; callers
// never pass a cart id directly.
type Identity interface {
	ResolveActor(ctx context.Context, email string) (primitive.ObjectID, error)
}
