package adapter

import (
	"context"
	"time"

	"exam-grader/internal/domain"
)

// NoopCache is a domain.Cache that stores nothing. It is used when no
// Redis address is configured so the rest of the pipeline can run without
// caching infrastructure.
type NoopCache struct{}

// NewNoopCache creates a cache that always misses.
func NewNoopCache() domain.Cache {
	return &NoopCache{}
}

func (n *NoopCache) Get(ctx context.Context, key string) (string, error) {
	return "", domain.ErrCacheMiss
}

func (n *NoopCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return nil
}

func (n *NoopCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (n *NoopCache) Ping(ctx context.Context) error {
	return nil
}
