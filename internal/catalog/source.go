// Package catalog provides sources of model catalogs: a static in-config
// table, an HTTP fetcher, and a caching/coalescing wrapper. A source either
// returns a valid catalog or an error; it never disguises failure as an
// empty-but-successful catalog.
package catalog

import (
	"context"

	"github.com/modelmux/modelmux/pkg/types"
)

// Source supplies the current model catalog. Fetch blocks until the catalog
// is available or the context is done. It may be called repeatedly; absent
// upstream changes the content is stable across calls.
type Source interface {
	Fetch(ctx context.Context) (*types.Catalog, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*types.Catalog, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context) (*types.Catalog, error) {
	return f(ctx)
}
