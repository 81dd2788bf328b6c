package catalog

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/modelmux/modelmux/pkg/types"
)

const snapshotKey = "catalog"

// CachedSource wraps a Source with a TTL snapshot cache and in-flight
// coalescing: concurrent duplicate fetches share one upstream call, and a
// fresh snapshot is served without touching upstream until it expires.
type CachedSource struct {
	inner Source
	cache *gocache.Cache
	group singleflight.Group
}

// NewCachedSource creates a caching wrapper with the given snapshot TTL.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &CachedSource{
		inner: inner,
		cache: gocache.New(ttl, cleanup),
	}
}

// Fetch returns the cached snapshot when fresh, otherwise fetches upstream.
// Errors are never cached; the next call retries upstream.
func (s *CachedSource) Fetch(ctx context.Context) (*types.Catalog, error) {
	if v, ok := s.cache.Get(snapshotKey); ok {
		return v.(*types.Catalog), nil
	}

	v, err, _ := s.group.Do(snapshotKey, func() (any, error) {
		cat, err := s.inner.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(snapshotKey, cat)
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Catalog), nil
}

// Invalidate drops the cached snapshot so the next Fetch hits upstream.
func (s *CachedSource) Invalidate() {
	s.cache.Delete(snapshotKey)
}
