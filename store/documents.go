package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flokiorg/lokirent/logger"
)

// documents is a typed JSON view over one key prefix of an ObjectStore.
type documents[T any] struct {
	objects ObjectStore
	prefix  string
}

func (d *documents[T]) key(id string) string {
	return d.prefix + id
}

func (d *documents[T]) get(ctx context.Context, id string) (*T, error) {
	data, err := d.objects.Get(ctx, d.key(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", d.key(id), err)
	}
	return &doc, nil
}

func (d *documents[T]) put(ctx context.Context, id string, doc *T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.key(id), err)
	}
	return d.objects.Put(ctx, d.key(id), data)
}

func (d *documents[T]) delete(ctx context.Context, id string) error {
	return d.objects.Delete(ctx, d.key(id))
}

// findBy loads every document under the prefix and keeps those matching
// predicate. Undecodable documents are logged and skipped so a single bad
// record cannot block sweeps or webhook matching.
func (d *documents[T]) findBy(ctx context.Context, predicate func(*T) bool) ([]*T, error) {
	keys, err := d.objects.List(ctx, d.prefix)
	if err != nil {
		return nil, err
	}

	var matches []*T
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := d.get(ctx, strings.TrimPrefix(key, d.prefix))
		if err != nil {
			logger.Logger.Warn().Err(err).Str("key", key).Msg("Skipping unreadable document")
			continue
		}
		if doc == nil {
			// deleted between List and Get
			continue
		}
		if predicate == nil || predicate(doc) {
			matches = append(matches, doc)
		}
	}
	return matches, nil
}
