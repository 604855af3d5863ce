// Package store persists JSON documents in a flat key-value object store and
// exposes typed repositories for orders, rentals, bans, pricing and admin
// login challenges on top of it.
package store

import (
	"context"
)

// ObjectStore is a flat namespace of byte documents addressed by
// slash-separated keys. Get returns (nil, nil) for a missing key.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
