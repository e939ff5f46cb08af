package services

import (
	"context"
	"fmt"
	"go-shop/models"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderStore persists orders. Create runs "look up the user's cart" and
// "insert the order" inside one transaction so a cart lookup failure never
// leaves a half-created order.
type OrderStore interface {
	// Get returns an order by id, or ErrNotFound.
	Get(ctx context.Context, orderID primitive.ObjectID) (models.Order, error)

	// ListByUser returns the user's orders, oldest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)

	// Create inserts a new order bound to the user's current cart and
	// returns its id. ErrNoCart if the user has no cart. The cart itself
	// is untouched: not cleared, not copied, not deleted.
	Create(ctx context.Context, order models.Order) (primitive.ObjectID, error)

	// Save persists updated order fields. The cart binding never changes.
	Save(ctx context.Context, order models.Order) error
}

// ProfilePatch carries the user profile fields reachable through an
// order's cart owner in the checkout detail flow.
type ProfilePatch struct {
	FullName *string
	Email    *string
	Phone    *string
}

// UserStore applies profile patches for the checkout detail flow.
type UserStore interface {
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch ProfilePatch) error
}

// OrderPatch is a sparse set of order fields; nil means "leave unchanged".
// The enum fields take the string forms of the API and are translated
// through fixed mappings.
type OrderPatch struct {
	FullName     *string  `json:"fullName"`
	Email        *string  `json:"email"`
	Phone        *string  `json:"phone"`
	DeliveryType *string  `json:"deliveryType"`
	PaymentType  *string  `json:"paymentType"`
	Status       *string  `json:"status"`
	City         *string  `json:"city"`
	Address      *string  `json:"address"`
	TotalCost    *float64 `json:"totalCost"`
}

// String forms accepted by the order update endpoint. An unrecognized
// string leaves the field at its prior value.
var (
	deliveryTypeNames = map[string]int{
		"delivery":         models.DeliveryStandard,
		"express delivery": models.DeliveryExpress,
	}
	paymentTypeNames = map[string]int{
		"online card":                        models.PaymentOnlineCard,
		"online from someone else's account": models.PaymentOnlineAccount,
	}
	statusNames = map[string]int{
		"awaiting payment": models.StatusAwaitingPayment,
		"paid":             models.StatusPaid,
	}
)

// OrderView is an order as presented to clients, with the authoritative
// recomputed total in place of the stored advisory figure.
type OrderView struct {
	ID           primitive.ObjectID `json:"id"`
	CreatedAt    time.Time          `json:"createdAt"`
	DeliveryType int                `json:"deliveryType"`
	PaymentType  int                `json:"paymentType"`
	Status       int                `json:"status"`
	City         string             `json:"city"`
	Address      string             `json:"address"`
	TotalCost    decimal.Decimal    `json:"totalCost"`
}

// OrderService owns checkout and the order total calculation. Totals are
// derived from the bound cart's live line items and current catalog prices
// on every read; the persisted total_cost field is advisory only.
type OrderService struct {
	orders  OrderStore
	carts   CartStore
	users   UserStore
	catalog Catalog
	log     *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orders OrderStore, carts CartStore, users UserStore, catalog Catalog, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, carts: carts, users: users, catalog: catalog, log: log}
}

// Create checks out the user's current cart into a new order and returns
// its id. The user must already have a cart; none is created here. A
// second checkout against the same cart creates another order bound to it.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID) (primitive.ObjectID, error) {
	order := models.Order{
		UserID:       userID,
		CreatedAt:    time.Now().UTC(),
		DeliveryType: models.DeliveryStandard,
		PaymentType:  models.PaymentOnlineCard,
		Status:       models.StatusAwaitingPayment,
	}

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.log.Info("order created",
		zap.String("order_id", id.Hex()),
		zap.String("user_id", userID.Hex()))
	return id, nil
}

// Total recomputes the authoritative total of an order from its bound
// cart. Calling it twice without a cart mutation in between yields equal
// values; calling it after one reflects the new contents immediately.
func (s *OrderService) Total(ctx context.Context, orderID primitive.ObjectID) (decimal.Decimal, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.totalFor(ctx, order)
}

func (s *OrderService) totalFor(ctx context.Context, order models.Order) (decimal.Decimal, error) {
	if order.CartID == nil {
		s.log.Error("order has no bound cart", zap.String("order_id", order.ID.Hex()))
		return decimal.Zero, fmt.Errorf("%w: order %s has no bound cart", ErrIntegrity, order.ID.Hex())
	}

	cart, err := s.carts.GetByID(ctx, *order.CartID)
	if err != nil {
		s.log.Error("bound cart missing",
			zap.String("order_id", order.ID.Hex()),
			zap.String("cart_id", order.CartID.Hex()))
		return decimal.Zero, fmt.Errorf("%w: cart %s bound to order %s is missing", ErrIntegrity, order.CartID.Hex(), order.ID.Hex())
	}

	if len(cart.Items) == 0 {
		return decimal.Zero, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	facts, err := s.catalog.LookupProducts(ctx, ids)
	if err != nil {
		return decimal.Zero, fmt.Errorf("looking up products: %w", err)
	}

	// Left-to-right summation, no intermediate rounding; only the final
	// amount is rounded to monetary precision.
	total := decimal.Zero
	for _, item := range cart.Items {
		fact, ok := facts[item.ProductID]
		if !ok {
			s.log.Error("cart references unknown product",
				zap.String("order_id", order.ID.Hex()),
				zap.String("product_id", item.ProductID.Hex()))
			return decimal.Zero, fmt.Errorf("%w: product %s in cart no longer resolves", ErrIntegrity, item.ProductID.Hex())
		}
		total = total.Add(fact.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2), nil
}

// Get returns one order with its recomputed total. ErrNotFound covers both
// a missing order and one belonging to another user.
func (s *OrderService) Get(ctx context.Context, userID, orderID primitive.ObjectID) (OrderView, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}
	if order.UserID != userID {
		return OrderView{}, fmt.Errorf("%w: order %s", ErrNotFound, orderID.Hex())
	}

	total, err := s.totalFor(ctx, order)
	if err != nil {
		return OrderView{}, err
	}
	return viewOf(order, total), nil
}

// List returns the user's orders with recomputed totals.
func (s *OrderService) List(ctx context.Context, userID primitive.ObjectID) ([]OrderView, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		total, err := s.totalFor(ctx, order)
		if err != nil {
			return nil, err
		}
		views = append(views, viewOf(order, total))
	}
	return views, nil
}

// UpdateFields applies a sparse patch to an order's checkout details and,
// through the bound cart's owner, to the user profile. Only present fields
// change; the cart binding never does.
func (s *OrderService) UpdateFields(ctx context.Context, userID, orderID primitive.ObjectID, patch OrderPatch) error {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return fmt.Errorf("%w: order %s", ErrNotFound, orderID.Hex())
	}

	if patch.DeliveryType != nil {
		if v, ok := deliveryTypeNames[*patch.DeliveryType]; ok {
			order.DeliveryType = v
		}
	}
	if patch.PaymentType != nil {
		if v, ok := paymentTypeNames[*patch.PaymentType]; ok {
			order.PaymentType = v
		}
	}
	if patch.Status != nil {
		if v, ok := statusNames[*patch.Status]; ok {
			order.Status = v
		}
	}
	if patch.City != nil {
		order.City = *patch.City
	}
	if patch.Address != nil {
		order.Address = *patch.Address
	}
	if patch.TotalCost != nil {
		// Advisory only; reads keep recomputing from the cart.
		order.TotalCost = *patch.TotalCost
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	if patch.FullName != nil || patch.Email != nil || patch.Phone != nil {
		if err := s.users.UpdateProfile(ctx, order.UserID, ProfilePatch{
			FullName: patch.FullName,
			Email:    patch.Email,
			Phone:    patch.Phone,
		}); err != nil {
			return fmt.Errorf("updating profile: %w", err)
		}
	}
	return nil
}

func viewOf(order models.Order, total decimal.Decimal) OrderView {
	return OrderView{
		ID:           order.ID,
		CreatedAt:    order.CreatedAt,
		DeliveryType: order.DeliveryType,
		PaymentType:  order.PaymentType,
		Status:       order.Status,
		City:         order.City,
		Address:      order.Address,
		TotalCost:    total,
	}
}
