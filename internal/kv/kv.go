// Package kv is the string key/value port the cart persists through.
// The cart keeps one value per shopper, written whole on every mutation,
// so the port stays deliberately tiny: no iteration, no transactions.
package kv

import "context"

type Store interface {
	// Get returns the value for key. The second return is false when the
	// key has never been written (or was deleted).
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
