package services_test

import (
	"context"
	"testing"

	"go-shop/models"
	"go-shop/services"
	"go-shop/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type orderFixture struct {
	carts   *store.MemoryCartStore
	orders  *store.MemoryOrderStore
	users   *store.MemoryUserStore
	catalog *store.MemoryCatalog
	cartSvc *services.CartService
	svc     *services.OrderService
	user    primitive.ObjectID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	carts := store.NewMemoryCartStore()
	orders := store.NewMemoryOrderStore(carts)
	users := store.NewMemoryUserStore()
	catalog := store.NewMemoryCatalog()
	log := zap.NewNop()

	f := &orderFixture{
		carts:   carts,
		orders:  orders,
		users:   users,
		catalog: catalog,
		cartSvc: services.NewCartService(carts, catalog, log),
		svc:     services.NewOrderService(orders, carts, users, catalog, log),
		user:    primitive.NewObjectID(),
	}
	users.Add(models.User{ID: f.user, Email: "buyer@example.com", FullName: "Buyer"})
	return f
}

func (f *orderFixture) product(price string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.catalog.Put(id, services.ProductFact{
		Title:     "product " + id.Hex()[:6],
		UnitPrice: decimal.RequireFromString(price),
		Available: true,
	})
	return id
}

func strPtr(s string) *string { return &s }

func TestCreateOrderWithoutCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), f.user)
	require.ErrorIs(t, err, services.ErrNoCart)

	// No half-created order.
	views, err := f.svc.List(context.Background(), f.user)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCreateOrderBindsCurrentCart(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("99.90")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)

	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)
	require.False(t, orderID.IsZero())

	// Checkout does not clear or copy the cart.
	cart, err := f.carts.Get(context.Background(), f.user)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestTotalEmptyCartIsZero(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	// Empty the cart; the order still reads a zero total, not an error.
	require.NoError(t, f.cartSvc.RemoveFromCart(context.Background(), f.user, p1, 1))

	total, err := f.svc.Total(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestTotalTracksLiveCartState(t *testing.T) {
	f := newOrderFixture(t)
	p2 := f.product("250.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p2, 1)
	require.NoError(t, err)

	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	total, err := f.svc.Total(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("250.00")), "got %s", total)

	// Mutating the cart after checkout changes the order total immediately.
	_, err = f.cartSvc.AddToCart(context.Background(), f.user, p2, 1)
	require.NoError(t, err)

	total, err = f.svc.Total(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("500.00")), "got %s", total)
}

func TestTotalIsIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("19.99")
	p2 := f.product("5.25")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 3)
	require.NoError(t, err)
	_, err = f.cartSvc.AddToCart(context.Background(), f.user, p2, 2)
	require.NoError(t, err)

	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	first, err := f.svc.Total(context.Background(), orderID)
	require.NoError(t, err)
	second, err := f.svc.Total(context.Background(), orderID)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.True(t, first.Equal(decimal.RequireFromString("70.47")), "got %s", first)
}

func TestTotalUnboundOrderIsIntegrityError(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	f.orders.Unbind(orderID)

	_, err = f.svc.Total(context.Background(), orderID)
	assert.ErrorIs(t, err, services.ErrIntegrity)
}

func TestTotalVanishedProductIsIntegrityError(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	f.catalog.Delete(p1)

	_, err = f.svc.Total(context.Background(), orderID)
	assert.ErrorIs(t, err, services.ErrIntegrity)
}

func TestTotalUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.Total(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRecheckoutCreatesSecondOrderOnSameCart(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 2)
	require.NoError(t, err)

	first, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Both orders track the same live cart.
	t1, err := f.svc.Total(context.Background(), first)
	require.NoError(t, err)
	t2, err := f.svc.Total(context.Background(), second)
	require.NoError(t, err)
	assert.True(t, t1.Equal(t2))
}

func TestGetOrderScopedToOwner(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	stranger := primitive.NewObjectID()
	_, err = f.svc.Get(context.Background(), stranger, orderID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateFieldsAppliesSparsePatch(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	err = f.svc.UpdateFields(context.Background(), f.user, orderID, services.OrderPatch{
		DeliveryType: strPtr("express delivery"),
		Status:       strPtr("paid"),
		City:         strPtr("Springfield"),
	})
	require.NoError(t, err)

	view, err := f.svc.Get(context.Background(), f.user, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryExpress, view.DeliveryType)
	assert.Equal(t, models.StatusPaid, view.Status)
	assert.Equal(t, "Springfield", view.City)
	// Untouched fields keep their defaults.
	assert.Equal(t, models.PaymentOnlineCard, view.PaymentType)
	assert.Equal(t, "", view.Address)
}

func TestUpdateFieldsPatchesProfileThroughOrder(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("10.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	err = f.svc.UpdateFields(context.Background(), f.user, orderID, services.OrderPatch{
		FullName: strPtr("New Name"),
		Phone:    strPtr("+15551234567"),
	})
	require.NoError(t, err)

	user, ok := f.users.User(f.user)
	require.True(t, ok)
	assert.Equal(t, "New Name", user.FullName)
	assert.Equal(t, "+15551234567", user.Phone)
	assert.Equal(t, "buyer@example.com", user.Email, "email was not in the patch")
}

func TestUpdateFieldsAdvisoryTotalDoesNotAffectReads(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.product("250.00")
	_, err := f.cartSvc.AddToCart(context.Background(), f.user, p1, 1)
	require.NoError(t, err)
	orderID, err := f.svc.Create(context.Background(), f.user)
	require.NoError(t, err)

	advisory := 9999.0
	err = f.svc.UpdateFields(context.Background(), f.user, orderID, services.OrderPatch{TotalCost: &advisory})
	require.NoError(t, err)

	// The stored figure is advisory; reads keep recomputing from the cart.
	view, err := f.svc.Get(context.Background(), f.user, orderID)
	require.NoError(t, err)
	assert.True(t, view.TotalCost.Equal(decimal.RequireFromString("250.00")), "got %s", view.TotalCost)
}

func TestUpdateFieldsUnknownOrder(t *testing.T) {
	f := newOrderFixture(t)
	err := f.svc.UpdateFields(context.Background(), f.user, primitive.NewObjectID(), services.OrderPatch{
		City: strPtr("Nowhere"),
	})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
