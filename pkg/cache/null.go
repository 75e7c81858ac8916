package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache and "serve --cache none",
// and is what NewRunner falls back to when given a nil cache. Every Get is a
// miss, so each resolve runs the solver.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache returns a cache that discards every write.
func NewNullCache() Cache {
	return &NullCache{}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (*NullCache) Delete(context.Context, string) error {
	return nil
}

func (*NullCache) Close() error {
	return nil
}
