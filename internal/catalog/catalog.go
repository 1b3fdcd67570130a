// Package catalog holds the storefront's product list. The cart's add
// operation resolves product names and prices against it so a tampered
// add-to-cart control cannot change pricing.
package catalog

import "context"

type Product struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

type Store interface {
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	Ping(ctx context.Context) error
}
