package store

import (
	"context"
	"fmt"
	"go-shop/models"
	"go-shop/services"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores with the same contracts as the mongo ones. Used by
// tests; a mutex stands in for mongo's single-document atomicity.

// MemoryCartStore keeps carts keyed by owning user.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart // by user id
}

// NewMemoryCartStore creates a new MemoryCartStore
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (s *MemoryCartStore) Get(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return models.Cart{}, fmt.Errorf("%w: cart for user %s", services.ErrNotFound, userID.Hex())
	}
	return copyCart(cart), nil
}

func (s *MemoryCartStore) GetByID(_ context.Context, cartID primitive.ObjectID) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cart := range s.carts {
		if cart.ID == cartID {
			return copyCart(cart), nil
		}
	}
	return models.Cart{}, fmt.Errorf("%w: cart %s", services.ErrNotFound, cartID.Hex())
}

func (s *MemoryCartStore) AddItem(_ context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		cart = &models.Cart{ID: primitive.NewObjectID(), UserID: userID}
		s.carts[userID] = cart
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			return copyCart(cart), nil
		}
	}
	cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: qty})
	return copyCart(cart), nil
}

func (s *MemoryCartStore) RemoveItem(_ context.Context, userID, productID primitive.ObjectID, qty int) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		return models.Cart{}, fmt.Errorf("%w: cart for user %s", services.ErrNotFound, userID.Hex())
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID != productID {
			continue
		}
		switch {
		case cart.Items[i].Quantity == qty:
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		case cart.Items[i].Quantity > qty:
			cart.Items[i].Quantity -= qty
		default:
			return models.Cart{}, fmt.Errorf("%w: cart holds %d of product %s, removal of %d requested",
				services.ErrConflict, cart.Items[i].Quantity, productID.Hex(), qty)
		}
		return copyCart(cart), nil
	}
	return models.Cart{}, fmt.Errorf("%w: product %s not in cart", services.ErrNotFound, productID.Hex())
}

func copyCart(cart *models.Cart) models.Cart {
	out := *cart
	out.Items = append([]models.CartItem(nil), cart.Items...)
	return out
}

// MemoryOrderStore persists orders against a MemoryCartStore.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
	carts  *MemoryCartStore
}

// NewMemoryOrderStore creates a new MemoryOrderStore
func NewMemoryOrderStore(carts *MemoryCartStore) *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[primitive.ObjectID]models.Order), carts: carts}
}

func (s *MemoryOrderStore) Get(_ context.Context, orderID primitive.ObjectID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, fmt.Errorf("%w: order %s", services.ErrNotFound, orderID.Hex())
	}
	return order, nil
}

func (s *MemoryOrderStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *MemoryOrderStore) Create(ctx context.Context, order models.Order) (primitive.ObjectID, error) {
	cart, err := s.carts.Get(ctx, order.UserID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: user %s", services.ErrNoCart, order.UserID.Hex())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = primitive.NewObjectID()
	cartID := cart.ID
	order.CartID = &cartID
	s.orders[order.ID] = order
	return order.ID, nil
}

func (s *MemoryOrderStore) Save(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[order.ID]
	if !ok {
		return fmt.Errorf("%w: order %s", services.ErrNotFound, order.ID.Hex())
	}
	// Cart binding never changes on save.
	order.CartID = stored.CartID
	s.orders[order.ID] = order
	return nil
}

// Unbind clears an order's cart binding, producing the legacy degenerate
// state tests need to exercise integrity handling.
func (s *MemoryOrderStore) Unbind(orderID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.orders[orderID]
	order.CartID = nil
	s.orders[orderID] = order
}

// MemoryCatalog serves product facts from a map.
type MemoryCatalog struct {
	mu    sync.Mutex
	facts map[primitive.ObjectID]services.ProductFact
}

// NewMemoryCatalog creates a new MemoryCatalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{facts: make(map[primitive.ObjectID]services.ProductFact)}
}

// Put sets the current fact for a product.
func (c *MemoryCatalog) Put(id primitive.ObjectID, fact services.ProductFact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facts[id] = fact
}

// Delete removes a product from the catalog.
func (c *MemoryCatalog) Delete(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.facts, id)
}

func (c *MemoryCatalog) LookupProducts(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]services.ProductFact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[primitive.ObjectID]services.ProductFact, len(ids))
	for _, id := range ids {
		if fact, ok := c.facts[id]; ok {
			out[id] = fact
		}
	}
	return out, nil
}

// MemoryUserStore records profile patches.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

// NewMemoryUserStore creates a new MemoryUserStore
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

// Add stores a user.
func (s *MemoryUserStore) Add(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// User returns a stored user.
func (s *MemoryUserStore) User(id primitive.ObjectID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return user, ok
}

// ResolveActor maps an email to the stored user's id.
func (s *MemoryUserStore) ResolveActor(_ context.Context, email string) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.Email == email {
			return id, nil
		}
	}
	return primitive.NilObjectID, fmt.Errorf("%w: user %s", services.ErrNotFound, email)
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, userID primitive.ObjectID, patch services.ProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", services.ErrNotFound, userID.Hex())
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	s.users[userID] = user
	return nil
}
