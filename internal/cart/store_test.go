package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.MemStore) {
	t.Helper()
	mem := kv.NewMemStore()
	return NewStore(mem, zap.NewNop()), mem
}

func TestAdd_SameIDAccumulatesQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 49.99, Qty: 1})
	c := s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 49.99, Qty: 2})

	require.Len(t, c, 1)
	assert.Equal(t, "sku1", c[0].ID)
	assert.Equal(t, 3, c[0].Qty)
	assert.InDelta(t, 149.97, s.Total(ctx, "shopper"), 1e-9)
}

func TestAdd_NewIDAppendsInOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "a", Name: "A", Price: 1, Qty: 1})
	s.Add(ctx, "shopper", Item{ID: "b", Name: "B", Price: 2, Qty: 1})
	c := s.Add(ctx, "shopper", Item{ID: "c", Name: "C", Price: 3, Qty: 1})

	require.Len(t, c, 3)
	assert.Equal(t, "a", c[0].ID)
	assert.Equal(t, "b", c[1].ID)
	assert.Equal(t, "c", c[2].ID)
}

func TestAdd_CoercesInvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c := s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: -5, Qty: 0})

	require.Len(t, c, 1)
	assert.Equal(t, 1, c[0].Qty, "quantity below 1 coerces to 1")
	assert.Equal(t, 0.0, c[0].Price, "negative price coerces to 0")
}

func TestRemove_GoneRegardlessOfPresence(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 1})
	s.Add(ctx, "shopper", Item{ID: "sku2", Name: "Vase", Price: 20, Qty: 1})

	c := s.Remove(ctx, "shopper", "sku1")
	require.Len(t, c, 1)
	assert.Equal(t, "sku2", c[0].ID)

	// Removing an absent id is a no-op, not an error.
	c = s.Remove(ctx, "shopper", "sku1")
	require.Len(t, c, 1)
	assert.Equal(t, "sku2", s.Get(ctx, "shopper")[0].ID)
}

func TestSetQuantity_ZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	build := func(t *testing.T) *Store {
		s, _ := newTestStore(t)
		s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 2})
		s.Add(ctx, "shopper", Item{ID: "sku2", Name: "Vase", Price: 20, Qty: 1})
		return s
	}

	viaSet := build(t)
	viaSet.SetQuantity(ctx, "shopper", "sku1", 0)

	viaRemove := build(t)
	viaRemove.Remove(ctx, "shopper", "sku1")

	assert.Equal(t, viaRemove.Get(ctx, "shopper"), viaSet.Get(ctx, "shopper"))
}

func TestSetQuantity_SetsAndIgnoresUnknown(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 1})

	c := s.SetQuantity(ctx, "shopper", "sku1", 7)
	require.Len(t, c, 1)
	assert.Equal(t, 7, c[0].Qty)

	c = s.SetQuantity(ctx, "shopper", "nope", 3)
	require.Len(t, c, 1)
	assert.Equal(t, 7, c[0].Qty)
}

func TestClear_EmptiesCart(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 4})
	c := s.Clear(ctx, "shopper")

	assert.Empty(t, c)
	assert.Zero(t, s.ItemCount(ctx, "shopper"))
	assert.Zero(t, s.Total(ctx, "shopper"))
}

func TestTotal_IdempotentWithoutMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 49.99, Qty: 2})
	s.Add(ctx, "shopper", Item{ID: "sku2", Name: "Vase", Price: 24.50, Qty: 1})

	first := s.Total(ctx, "shopper")
	assert.InDelta(t, 124.48, first, 1e-9)
	assert.Equal(t, first, s.Total(ctx, "shopper"))
	assert.Equal(t, first, s.Total(ctx, "shopper"))
}

func TestGet_RoundTripPreservesEverything(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "shopper", Item{ID: "sku2", Name: "Vase", Price: 24.50, Qty: 1})
	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 49.99, Qty: 3})

	want := Cart{
		{ID: "sku2", Name: "Vase", Price: 24.50, Qty: 1},
		{ID: "sku1", Name: "Lamp", Price: 49.99, Qty: 3},
	}
	assert.Equal(t, want, s.Get(ctx, "shopper"), "ids, names, prices, quantities and order survive the round trip")
}

func TestGet_MalformedPayloadReadsAsEmpty(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "cart:shopper", "definitely not json"))
	assert.Empty(t, s.Get(ctx, "shopper"))

	// Structurally valid but invariant-violating lines are dropped.
	require.NoError(t, mem.Set(ctx, "cart:shopper", `[{"id":"","qty":2},{"id":"ok","price":1,"qty":0},{"id":"keep","price":2,"qty":1}]`))
	c := s.Get(ctx, "shopper")
	require.Len(t, c, 1)
	assert.Equal(t, "keep", c[0].ID)
}

func TestGet_MissingKeyIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.Get(context.Background(), "nobody"))
}

func TestCartsAreIsolatedPerShopper(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "alice", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 1})
	s.Add(ctx, "bob", Item{ID: "sku2", Name: "Vase", Price: 20, Qty: 2})

	require.Len(t, s.Get(ctx, "alice"), 1)
	assert.Equal(t, "sku1", s.Get(ctx, "alice")[0].ID)
	assert.Equal(t, 2, s.ItemCount(ctx, "bob"))
}

func TestSubscribe_ListenersSeeEveryMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var calls int
	var last Cart
	s.Subscribe(func(owner string, c Cart) {
		calls++
		last = c
		assert.Equal(t, "shopper", owner)
	})

	s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 1})
	s.SetQuantity(ctx, "shopper", "sku1", 5)
	s.Remove(ctx, "shopper", "sku1")
	s.Clear(ctx, "shopper")

	assert.Equal(t, 4, calls)
	assert.Empty(t, last)
}

// brokenKV fails every write; reads work.
type brokenKV struct {
	*kv.MemStore
}

func (b brokenKV) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

func TestAdd_WriteFailureStillReturnsUpdatedCart(t *testing.T) {
	mem := kv.NewMemStore()
	s := NewStore(brokenKV{mem}, zap.NewNop())
	ctx := context.Background()

	var notified int
	s.Subscribe(func(string, Cart) { notified++ })

	c := s.Add(ctx, "shopper", Item{ID: "sku1", Name: "Lamp", Price: 10, Qty: 1})

	require.Len(t, c, 1, "caller still gets the updated cart")
	assert.Equal(t, 1, notified, "listeners still fire")
	assert.Empty(t, s.Get(ctx, "shopper"), "but the mutation was not durable")
}
