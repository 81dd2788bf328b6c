// Package types defines the catalog data model shared by the resolver,
// catalog sources, and the HTTP surface.
package types //nolint:revive // package name is intentional

import (
	"fmt"
	"strings"
)

const MaxModelNameLength = 256

// Category classifies a model's pricing tier as exposed to selectors.
type Category string

const (
	// CategoryFree marks models served without cost (e.g. OpenRouter free tier).
	CategoryFree Category = "Free"

	// CategoryPaid marks models billed per token (e.g. Gemini).
	CategoryPaid Category = "Paid"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	return c == CategoryFree || c == CategoryPaid
}

// ModelDescriptor describes a single selectable model as issued by a
// catalog source. Descriptors are immutable once issued; the resolver
// borrows them and returns them unchanged.
type ModelDescriptor struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"name"`
	ProviderName  string   `json:"provider"`
	Category      Category `json:"category"`
	ContextLength int      `json:"context_length"`
	Description   string   `json:"description,omitempty"`
}

// Validate checks that a descriptor is well-formed.
func (m ModelDescriptor) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("model id is required")
	}
	if err := ValidateModelName(m.ID); err != nil {
		return err
	}
	if m.ProviderName == "" {
		return fmt.Errorf("model %q: provider is required", m.ID)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("model %q: unknown category %q", m.ID, m.Category)
	}
	if m.ContextLength <= 0 {
		return fmt.Errorf("model %q: context_length must be positive", m.ID)
	}
	return nil
}

// Catalog is the full set of selectable models plus the declared default,
// matching the wire shape of GET /api/models.
type Catalog struct {
	Models         []ModelDescriptor `json:"models"`
	DefaultModelID string            `json:"default_model"`
}

// Find returns the first descriptor whose id exactly matches the given id.
// Lookup is case-sensitive. Duplicate ids are a catalog-producer bug; when
// they occur the first occurrence in catalog order wins, deterministically.
func (c *Catalog) Find(id string) (ModelDescriptor, bool) {
	if c == nil {
		return ModelDescriptor{}, false
	}
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// Validate checks every descriptor and the default reference.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}
	for i, m := range c.Models {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("models[%d]: %w", i, err)
		}
	}
	if c.DefaultModelID != "" {
		if _, ok := c.Find(c.DefaultModelID); !ok {
			return fmt.Errorf("default_model %q not present in catalog", c.DefaultModelID)
		}
	}
	return nil
}

// ValidateModelName checks that a model name is within acceptable bounds.
func ValidateModelName(model string) error {
	if len(model) > MaxModelNameLength {
		return fmt.Errorf("model is too long (max %d characters)", MaxModelNameLength)
	}
	return nil
}

// SplitProviderModel splits LiteLLM-style "provider/model" strings.
// Returns ("", model) when no provider prefix is present.
func SplitProviderModel(model string) (provider string, modelName string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", ""
	}
	idx := strings.Index(model, "/")
	if idx <= 0 || idx >= len(model)-1 {
		return "", model
	}
	return model[:idx], model[idx+1:]
}
