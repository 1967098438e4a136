// Package qcache provides the short-TTL response cache that sits at the
// transport boundary and absorbs bursty current-question polling. Only the
// shared portion of a response is cached; personalized fields are always
// computed fresh by the caller.
package qcache

import "context"

// Cache stores byte payloads under string keys with a fixed short TTL chosen
// at construction time. Misses and backend failures both report !ok; the
// caller re-derives from storage either way.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context, key string)
}
