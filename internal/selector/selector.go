// Package selector maintains the catalog-backed selection state behind a
// model picker. It owns the catalog snapshot, coalesces concurrent
// refreshes, and stays usable in a degraded state when the catalog is
// unreachable.
package selector

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	modelmux "github.com/modelmux/modelmux"
	"github.com/modelmux/modelmux/internal/catalog"
	"github.com/modelmux/modelmux/internal/metrics"
	"github.com/modelmux/modelmux/internal/provider"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

// ErrClosed is returned when the selector has been torn down.
var ErrClosed = errors.New("selector is closed")

// Selector is the selection surface state. All methods are safe for
// concurrent use.
type Selector struct {
	source   catalog.Source
	bindings *provider.Bindings
	logger   *slog.Logger

	snapshot atomic.Pointer[types.Catalog]
	degraded atomic.Bool
	closed   atomic.Bool
	group    singleflight.Group
}

// New creates a selector over the given catalog source and bindings.
// Call Refresh to populate the initial snapshot.
func New(source catalog.Source, bindings *provider.Bindings, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		source:   source,
		bindings: bindings,
		logger:   logger,
	}
}

// Refresh fetches the catalog and swaps the snapshot. Concurrent duplicate
// refreshes coalesce onto one fetch; every caller observes its result. On
// failure the previous snapshot is kept and the surface reports degraded —
// a fetch failure is never converted into an empty catalog.
func (s *Selector) Refresh(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	_, err, _ := s.group.Do("refresh", func() (any, error) {
		start := time.Now()
		cat, err := s.source.Fetch(ctx)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			metrics.RecordCatalogFetch("selector", "error", elapsed)
			s.degraded.Store(true)
			s.logger.Error("catalog refresh failed, keeping previous snapshot",
				"error", err,
			)
			return nil, err
		}
		metrics.RecordCatalogFetch("selector", "success", elapsed)

		// A fetch completing after Close must not resurrect the surface.
		if s.closed.Load() {
			return nil, ErrClosed
		}

		s.snapshot.Store(cat)
		s.degraded.Store(false)
		s.logger.Debug("catalog refreshed",
			"models", len(cat.Models),
			"default_model", cat.DefaultModelID,
		)
		return nil, nil
	})
	return err
}

// Current returns the latest catalog snapshot and whether the surface is
// degraded (last refresh failed). The snapshot is nil until the first
// successful refresh.
func (s *Selector) Current() (*types.Catalog, bool) {
	return s.snapshot.Load(), s.degraded.Load()
}

// Choose resolves a model id against the current snapshot. On unknown_model
// or no_provider_configured it falls back to the catalog's declared default
// when that resolves; otherwise the original error is returned and the
// choice stays unset.
func (s *Selector) Choose(id string) (modelmux.Resolution, error) {
	if s.closed.Load() {
		return modelmux.Resolution{}, ErrClosed
	}

	cat := s.snapshot.Load()
	res, err := modelmux.Resolve(id, cat, s.bindings)
	if err == nil {
		metrics.RecordResolution("success", res.Provider)
		return res, nil
	}
	metrics.RecordResolution(string(rerrors.ReasonOf(err)), "")

	switch rerrors.ReasonOf(err) {
	case rerrors.ReasonUnknownModel, rerrors.ReasonNoProviderConfigured:
		if id == "" || cat == nil || cat.DefaultModelID == "" || cat.DefaultModelID == id {
			return modelmux.Resolution{}, err
		}
		fallback, ferr := modelmux.Resolve("", cat, s.bindings)
		if ferr != nil {
			return modelmux.Resolution{}, err
		}
		s.logger.Warn("requested model unavailable, using catalog default",
			"requested", id,
			"default", fallback.Descriptor.ID,
		)
		metrics.RecordResolution("fallback", fallback.Provider)
		return fallback, nil
	default:
		return modelmux.Resolution{}, err
	}
}

// Close tears the surface down. In-flight refresh results are discarded and
// later calls return ErrClosed.
func (s *Selector) Close() {
	s.closed.Store(true)
}
