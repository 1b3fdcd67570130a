package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyCart is the only error a cart operation surfaces to callers.
var ErrEmptyCart = errors.New("cart is empty")

type SummaryLine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	LineTotal float64 `json:"line_total"`
}

type Summary struct {
	ID        string        `json:"id"`
	Lines     []SummaryLine `json:"lines"`
	Subtotal  float64       `json:"subtotal"`
	Total     float64       `json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}

// Checkout summarizes the cart and stops. It is the boundary where a
// payment-session integration would attach; it performs no network call
// and leaves the cart untouched.
func (s *Store) Checkout(ctx context.Context, owner string) (Summary, error) {
	c := s.Get(ctx, owner)
	if len(c) == 0 {
		return Summary{}, ErrEmptyCart
	}

	lines := make([]SummaryLine, 0, len(c))
	for _, it := range c {
		lines = append(lines, SummaryLine{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Qty:       it.Qty,
			LineTotal: it.Price * float64(it.Qty),
		})
	}

	total := c.Total()
	return Summary{
		ID:        "sum_" + uuid.NewString(),
		Lines:     lines,
		Subtotal:  total,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}, nil
}
