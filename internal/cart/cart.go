// Package cart implements the storefront's shopping cart: an ordered,
// id-unique list of line items per shopper, persisted whole as one JSON
// value in a key/value store, with synchronous change notification.
package cart

import "math"

// Item is one line of a cart. The JSON tags are the persisted wire
// format; changing them breaks carts already on disk.
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Cart is insertion-ordered and unique by item id.
type Cart []Item

func (c Cart) Total() float64 {
	var total float64
	for _, it := range c {
		total += it.Price * float64(it.Qty)
	}
	return total
}

// Count is the exact item count; display capping is the view's concern.
func (c Cart) Count() int {
	var n int
	for _, it := range c {
		n += it.Qty
	}
	return n
}

func (c Cart) index(id string) int {
	for i, it := range c {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// add merges qty into an existing line or appends a new one.
func (c Cart) add(it Item) Cart {
	if i := c.index(it.ID); i >= 0 {
		c[i].Qty += it.Qty
		return c
	}
	return append(c, it)
}

func (c Cart) remove(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	return append(c[:i], c[i+1:]...)
}

// setQty sets a line's quantity; qty <= 0 drops the line. Unknown ids
// are a no-op, matching remove.
func (c Cart) setQty(id string, qty int) Cart {
	if qty <= 0 {
		return c.remove(id)
	}
	if i := c.index(id); i >= 0 {
		c[i].Qty = qty
	}
	return c
}

// sanitize coerces an item to the cart invariants: quantity at least 1,
// price a non-negative finite number (invalid prices become 0).
func sanitize(it Item) Item {
	if it.Qty < 1 {
		it.Qty = 1
	}
	if it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
		it.Price = 0
	}
	return it
}

// sanitized filters a deserialized cart down to lines that satisfy the
// invariants. Lines with no id or a non-positive quantity are dropped
// rather than repaired; they can only come from hand-edited storage.
func (c Cart) sanitized() Cart {
	out := c[:0]
	for _, it := range c {
		if it.ID == "" || it.Qty < 1 {
			continue
		}
		if it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
			it.Price = 0
		}
		out = append(out, it)
	}
	return out
}
