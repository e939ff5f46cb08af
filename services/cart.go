package services

import (
	"context"
	"fmt"
	"go-shop/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartStore persists carts keyed by their owning user. AddItem and
// RemoveItem carry the merge semantics and must apply atomically per
// (cart, product): concurrent mutations of the same line item may not
// lose updates. The mongo implementation uses single-document updates;
// the in-memory one serializes with a mutex.
type CartStore interface {
	// Get returns the user's cart, or ErrNotFound if none exists yet.
	Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)

	// GetByID returns a cart by its own id, or ErrNotFound.
	GetByID(ctx context.Context, cartID primitive.ObjectID) (models.Cart, error)

	// AddItem merges qty units of the product into the user's cart,
	// creating the cart if absent and the line item if new. Returns the
	// updated cart.
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error)

	// RemoveItem takes qty units out of the line item. Equal quantities
	// delete the line, smaller ones decrement it. A missing line item is
	// ErrNotFound; removing more than stored is ErrConflict and changes
	// nothing.
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error)
}

// CartLine is one cart line item joined to current catalog facts for
// presentation. Price and availability reflect the catalog at read time.
type CartLine struct {
	ProductID primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Price     decimal.Decimal    `json:"price"`
	Available bool               `json:"available"`
	Quantity  int                `json:"count"`
}

// CartService owns the cart mutation rules: at most one line item per
// (cart, product), quantities always positive, carts created lazily and
// never deleted here.
type CartService struct {
	carts   CartStore
	catalog Catalog
	log     *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(carts CartStore, catalog Catalog, log *zap.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, log: log}
}

// AddToCart merges qty units of a product into the user's cart and returns
// the updated, hydrated cart view. The product must resolve in the catalog;
// an unknown product rejects the add with no state change.
func (s *CartService) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, qty int) ([]CartLine, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	facts, err := s.catalog.LookupProducts(ctx, []primitive.ObjectID{productID})
	if err != nil {
		return nil, fmt.Errorf("looking up product: %w", err)
	}
	if _, ok := facts[productID]; !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID.Hex())
	}

	cart, err := s.carts.AddItem(ctx, userID, productID, qty)
	if err != nil {
		return nil, err
	}

	s.log.Info("item added to cart",
		zap.String("user_id", userID.Hex()),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", qty))

	return s.hydrate(ctx, cart)
}

// RemoveFromCart takes qty units of a product out of the user's cart.
// Removal is all-or-nothing: asking for more than the cart holds is a
// conflict and leaves the line item untouched.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	if _, err := s.carts.RemoveItem(ctx, userID, productID, qty); err != nil {
		return err
	}

	s.log.Info("item removed from cart",
		zap.String("user_id", userID.Hex()),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", qty))
	return nil
}

// GetCart returns the user's hydrated cart view, or ErrNotFound if the
// user has never put anything in a cart.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) ([]CartLine, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, cart)
}

// hydrate joins cart line items to current catalog facts. A product that
// no longer resolves keeps its line but shows as unavailable with a zero
// price; mutation and totals handle that case with their own errors.
func (s *CartService) hydrate(ctx context.Context, cart models.Cart) ([]CartLine, error) {
	lines := make([]CartLine, 0, len(cart.Items))
	if len(cart.Items) == 0 {
		return lines, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	facts, err := s.catalog.LookupProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up products: %w", err)
	}

	for _, item := range cart.Items {
		line := CartLine{
			ProductID: item.ProductID,
			Price:     decimal.Zero,
			Quantity:  item.Quantity,
		}
		if fact, ok := facts[item.ProductID]; ok {
			line.Title = fact.Title
			line.Price = fact.UnitPrice
			line.Available = fact.Available
		}
		lines = append(lines, line)
	}
	return lines, nil
}
