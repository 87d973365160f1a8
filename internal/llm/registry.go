package llm

import (
	"fmt"
)

// Registry resolves a Provider for a model identifier. Providers are asked
// in registration order via SupportsModel.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry over the given providers.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Register appends a provider.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// ForModel returns the first provider that supports the model.
func (r *Registry) ForModel(model string) (Provider, error) {
	for _, p := range r.providers {
		if p.SupportsModel(model) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider registered for model %q", model)
}

// Images returns the first registered provider that can generate images,
// or nil if none can.
func (r *Registry) Images() ImageGenerator {
	for _, p := range r.providers {
		if ig, ok := p.(ImageGenerator); ok {
			return ig
		}
	}
	return nil
}
