package modelmux

import (
	"github.com/modelmux/modelmux/internal/provider"
	"github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

// Resolution is a successful model-to-provider binding. It is never
// partially populated: either Resolve returns a Resolution with all fields
// set, or it returns an error.
type Resolution struct {
	// Descriptor is the matched catalog entry, returned unchanged.
	Descriptor types.ModelDescriptor

	// Provider is the provider name the descriptor carries.
	Provider string

	// Client is the live binding that can serve the model.
	Client provider.ChatClient
}

// Resolve maps a requested model id to a provider binding.
//
// An empty requestedID selects the catalog's declared default model; a
// catalog with no default yields no_provider_configured. A present id is
// matched by exact, case-sensitive comparison against catalog order, first
// occurrence winning (duplicate ids are a catalog-producer bug). A matched
// descriptor whose provider has no binding yields no_provider_configured;
// an unmatched id yields unknown_model.
//
// Resolve is pure and total over its inputs: it performs no I/O, holds no
// state, and always returns either a Resolution or a ResolutionError.
// Identical inputs produce identical results.
func Resolve(requestedID string, cat *types.Catalog, bindings *provider.Bindings) (Resolution, error) {
	if cat == nil {
		return Resolution{}, errors.NewCatalogUnavailable("no catalog supplied")
	}

	id := requestedID
	if id == "" {
		if cat.DefaultModelID == "" {
			return Resolution{}, errors.NewNoProviderConfigured("", "")
		}
		id = cat.DefaultModelID
	}

	desc, ok := cat.Find(id)
	if !ok {
		return Resolution{}, errors.NewUnknownModel(id)
	}

	client, ok := bindings.Get(desc.ProviderName)
	if !ok {
		return Resolution{}, errors.NewNoProviderConfigured(desc.ID, desc.ProviderName)
	}

	return Resolution{
		Descriptor: desc,
		Provider:   desc.ProviderName,
		Client:     client,
	}, nil
}
