package catalog

import (
	"context"
	"fmt"

	"github.com/modelmux/modelmux/pkg/types"
)

// StaticSource serves a catalog assembled at construction time from
// configuration. The descriptor slice is copied so later mutation of the
// input cannot leak into issued catalogs.
type StaticSource struct {
	catalog types.Catalog
}

// NewStaticSource builds a static source from descriptors and a default id.
// The catalog is validated once here; Fetch can no longer fail.
func NewStaticSource(models []types.ModelDescriptor, defaultModelID string) (*StaticSource, error) {
	cat := types.Catalog{
		Models:         make([]types.ModelDescriptor, len(models)),
		DefaultModelID: defaultModelID,
	}
	copy(cat.Models, models)

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("static catalog: %w", err)
	}
	return &StaticSource{catalog: cat}, nil
}

// Fetch returns a copy of the configured catalog.
func (s *StaticSource) Fetch(_ context.Context) (*types.Catalog, error) {
	out := types.Catalog{
		Models:         make([]types.ModelDescriptor, len(s.catalog.Models)),
		DefaultModelID: s.catalog.DefaultModelID,
	}
	copy(out.Models, s.catalog.Models)
	return &out, nil
}
