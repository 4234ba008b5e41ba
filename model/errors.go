package model

import (
	"fmt"
	"strings"
)

// UnsupportedProviderError reports a provider value outside the closed set.
type UnsupportedProviderError struct {
	Provider Provider
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	names := make([]string, 0, len(Providers()))
	for _, p := range Providers() {
		names = append(names, string(p))
	}
	return fmt.Sprintf("unsupported provider: %s (supported: %s)", e.Provider, strings.Join(names, ", "))
}

// UnsupportedModelError reports a model name outside the provider's
// registered set. The factory never substitutes another model.
type UnsupportedModelError struct {
	Provider  Provider
	Name      string
	Supported []string
}

// Error implements the error interface.
func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported %s model: %s (supported: %s)", e.Provider, e.Name, strings.Join(e.Supported, ", "))
}
