package provider

import (
	"fmt"
	"sort"
)

// Bindings is the read-only set of live provider clients available at
// resolution time, keyed by the provider name catalog descriptors carry.
// It is constructed once and passed explicitly to the resolver; there is no
// process-wide singleton.
type Bindings struct {
	clients map[string]ChatClient
}

// NewBindings builds an immutable binding set. Each provider name may have
// at most one client; a duplicate is a configuration error.
func NewBindings(clients ...ChatClient) (*Bindings, error) {
	m := make(map[string]ChatClient, len(clients))
	for _, c := range clients {
		if c == nil {
			continue
		}
		name := c.Name()
		if name == "" {
			return nil, fmt.Errorf("provider binding with empty name")
		}
		if _, exists := m[name]; exists {
			return nil, fmt.Errorf("duplicate binding for provider %q", name)
		}
		m[name] = c
	}
	return &Bindings{clients: m}, nil
}

// Get returns the client bound to the provider name.
func (b *Bindings) Get(providerName string) (ChatClient, bool) {
	if b == nil {
		return nil, false
	}
	c, ok := b.clients[providerName]
	return c, ok
}

// Has reports whether a binding exists for the provider name.
func (b *Bindings) Has(providerName string) bool {
	_, ok := b.Get(providerName)
	return ok
}

// Names returns the bound provider names in sorted order.
func (b *Bindings) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.clients))
	for name := range b.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.clients)
}
