package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"Storefront/internal/kv"
)

const keyPrefix = "cart:"

// Listener observes cart changes. Listeners run synchronously after the
// cart has been written, on the mutating goroutine; keep them cheap.
type Listener func(owner string, c Cart)

// Store manages per-shopper carts over an injected kv.Store.
//
// Its failure contract is deliberate: reads degrade to an empty cart and
// mutations never fail the caller. A write that cannot be persisted is
// logged and the updated cart is still returned; it just won't survive a
// restart. Callers render whatever comes back.
type Store struct {
	kv  kv.Store
	log *zap.Logger

	// opMu serializes read-modify-write cycles in this process. Writers
	// in other processes sharing the same backend are last-writer-wins.
	opMu sync.Mutex

	lmu       sync.RWMutex
	listeners []Listener
}

func NewStore(store kv.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: store, log: log}
}

// Subscribe registers a listener for every subsequent mutation.
func (s *Store) Subscribe(fn Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) Ping(ctx context.Context) error { return s.kv.Ping(ctx) }

// Get returns the shopper's cart. A missing key, a backend error, or a
// malformed payload all read as an empty cart.
func (s *Store) Get(ctx context.Context, owner string) Cart {
	raw, ok, err := s.kv.Get(ctx, keyPrefix+owner)
	if err != nil {
		s.log.Warn("cart read failed, treating as empty", zap.Error(err), zap.String("owner", owner))
		return Cart{}
	}
	if !ok {
		return Cart{}
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.log.Warn("discarding malformed cart payload", zap.Error(err), zap.String("owner", owner))
		return Cart{}
	}
	return c.sanitized()
}

// Add merges the item into the cart: an existing id gains quantity, a
// new id appends. The item is coerced to the cart invariants first.
func (s *Store) Add(ctx context.Context, owner string, it Item) Cart {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	c := s.Get(ctx, owner).add(sanitize(it))
	s.persist(ctx, owner, c)
	return c
}

// Remove drops the line with the given id; absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, owner, id string) Cart {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	c := s.Get(ctx, owner).remove(id)
	s.persist(ctx, owner, c)
	return c
}

// SetQuantity sets a line's quantity; qty <= 0 removes the line.
func (s *Store) SetQuantity(ctx context.Context, owner, id string, qty int) Cart {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	c := s.Get(ctx, owner).setQty(id, qty)
	s.persist(ctx, owner, c)
	return c
}

// Clear empties the cart by deleting the persisted key.
func (s *Store) Clear(ctx context.Context, owner string) Cart {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.kv.Delete(ctx, keyPrefix+owner); err != nil {
		s.log.Error("cart clear not durable", zap.Error(err), zap.String("owner", owner))
	}
	c := Cart{}
	s.notify(owner, c)
	return c
}

func (s *Store) Total(ctx context.Context, owner string) float64 {
	return s.Get(ctx, owner).Total()
}

func (s *Store) ItemCount(ctx context.Context, owner string) int {
	return s.Get(ctx, owner).Count()
}

func (s *Store) persist(ctx context.Context, owner string, c Cart) {
	b, err := json.Marshal(c)
	if err == nil {
		err = s.kv.Set(ctx, keyPrefix+owner, string(b))
	}
	if err != nil {
		s.log.Error("cart write not durable", zap.Error(err), zap.String("owner", owner))
	}
	s.notify(owner, c)
}

func (s *Store) notify(owner string, c Cart) {
	s.lmu.RLock()
	fns := s.listeners
	s.lmu.RUnlock()

	for _, fn := range fns {
		fn(owner, c)
	}
}
