package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string, value interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	// CartIDKeyPrefix stores the server-issued cart identifier per storefront
	// session, the counterpart of localStorage["cart-id"] in the web client.
	CartIDKeyPrefix = "cart-id"

	// SnapshotKeyPrefix stores the last good cart snapshot so a failed fetch
	// can keep showing stale lines.
	SnapshotKeyPrefix = "cart-snapshot"
)
