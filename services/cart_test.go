package services_test

import (
	"context"
	"sync"
	"testing"

	"go-shop/services"
	"go-shop/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type cartFixture struct {
	svc     *services.CartService
	carts   *store.MemoryCartStore
	catalog *store.MemoryCatalog
	user    primitive.ObjectID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	carts := store.NewMemoryCartStore()
	catalog := store.NewMemoryCatalog()
	return &cartFixture{
		svc:     services.NewCartService(carts, catalog, zap.NewNop()),
		carts:   carts,
		catalog: catalog,
		user:    primitive.NewObjectID(),
	}
}

func (f *cartFixture) product(price string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.catalog.Put(id, services.ProductFact{
		Title:     "product " + id.Hex()[:6],
		UnitPrice: decimal.RequireFromString(price),
		Available: true,
	})
	return id
}

func (f *cartFixture) quantityOf(t *testing.T, productID primitive.ObjectID) (int, bool) {
	t.Helper()
	cart, err := f.carts.Get(context.Background(), f.user)
	if err != nil {
		return 0, false
	}
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return item.Quantity, true
		}
	}
	return 0, false
}

func TestAddToCartCreatesCartLazily(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	_, err := f.carts.Get(context.Background(), f.user)
	require.ErrorIs(t, err, services.ErrNotFound)

	lines, err := f.svc.AddToCart(context.Background(), f.user, p1, 3)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, p1, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddToCartMergesSameProduct(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	_, err := f.svc.AddToCart(context.Background(), f.user, p1, 3)
	require.NoError(t, err)
	lines, err := f.svc.AddToCart(context.Background(), f.user, p1, 2)
	require.NoError(t, err)

	// One line item per (cart, product); quantities merge.
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	f := newCartFixture(t)
	unknown := primitive.NewObjectID()

	_, err := f.svc.AddToCart(context.Background(), f.user, unknown, 1)
	require.ErrorIs(t, err, services.ErrNotFound)

	// The rejected add leaves no partial state: no cart was created.
	_, err = f.carts.Get(context.Background(), f.user)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAddToCartInvalidQuantity(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	for _, qty := range []int{0, -1} {
		_, err := f.svc.AddToCart(context.Background(), f.user, p1, qty)
		assert.ErrorIs(t, err, services.ErrValidation)
	}
}

func TestRemoveFromCartDecrements(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	_, err := f.svc.AddToCart(context.Background(), f.user, p1, 5)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFromCart(context.Background(), f.user, p1, 2))
	qty, ok := f.quantityOf(t, p1)
	require.True(t, ok)
	assert.Equal(t, 3, qty)
}

func TestRemoveFromCartExactQuantityDeletesLine(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	_, err := f.svc.AddToCart(context.Background(), f.user, p1, 3)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFromCart(context.Background(), f.user, p1, 3))
	_, ok := f.quantityOf(t, p1)
	assert.False(t, ok, "line item should be gone once quantity reaches zero")

	// The line no longer exists, so another removal is NotFound.
	err = f.svc.RemoveFromCart(context.Background(), f.user, p1, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRemoveFromCartOverRemovalIsConflict(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	_, err := f.svc.AddToCart(context.Background(), f.user, p1, 3)
	require.NoError(t, err)

	err = f.svc.RemoveFromCart(context.Background(), f.user, p1, 10)
	require.ErrorIs(t, err, services.ErrConflict)

	// All-or-nothing: nothing was clamped or partially removed.
	qty, ok := f.quantityOf(t, p1)
	require.True(t, ok)
	assert.Equal(t, 3, qty)
}

func TestRemoveFromCartNoCart(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	err := f.svc.RemoveFromCart(context.Background(), f.user, p1, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAddToCartOnlyTouchesOwnLine(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")
	p2 := f.product("20.00")

	_, err := f.svc.AddToCart(context.Background(), f.user, p1, 2)
	require.NoError(t, err)
	lines, err := f.svc.AddToCart(context.Background(), f.user, p2, 1)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	q1, _ := f.quantityOf(t, p1)
	q2, _ := f.quantityOf(t, p2)
	assert.Equal(t, 2, q1)
	assert.Equal(t, 1, q2)
}

func TestConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.AddToCart(context.Background(), f.user, p1, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	qty, ok := f.quantityOf(t, p1)
	require.True(t, ok)
	assert.Equal(t, workers, qty)
}

func TestQuantityConservation(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("10.00")

	added, removed := 0, 0
	for _, qty := range []int{3, 2, 7} {
		_, err := f.svc.AddToCart(context.Background(), f.user, p1, qty)
		require.NoError(t, err)
		added += qty
	}
	for _, qty := range []int{4, 1} {
		require.NoError(t, f.svc.RemoveFromCart(context.Background(), f.user, p1, qty))
		removed += qty
	}
	// A rejected over-removal must not count.
	require.ErrorIs(t, f.svc.RemoveFromCart(context.Background(), f.user, p1, 100), services.ErrConflict)

	qty, ok := f.quantityOf(t, p1)
	require.True(t, ok)
	assert.Equal(t, added-removed, qty)
}

func TestGetCartHydratesFromCatalog(t *testing.T) {
	f := newCartFixture(t)
	p1 := f.product("250.00")

	_, err := f.svc.AddToCart(context.Background(), f.user, p1, 2)
	require.NoError(t, err)

	lines, err := f.svc.GetCart(context.Background(), f.user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, lines[0].Available)

	// Price changes show up on the next read; nothing is cached.
	f.catalog.Put(p1, services.ProductFact{Title: "repriced", UnitPrice: decimal.RequireFromString("300.00"), Available: true})
	lines, err = f.svc.GetCart(context.Background(), f.user)
	require.NoError(t, err)
	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("300.00")))
}
