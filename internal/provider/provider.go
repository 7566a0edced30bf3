// Package provider names the supported model providers and resolves their
// credentials.
package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Provider names accepted in the config file and on the command line.
const (
	Google    = "google"
	OpenAI    = "openai"
	Anthropic = "anthropic"
)

// Default is used when no provider is configured.
const Default = Google

var defaultModels = map[string]string{
	Google:    "gemini-2.0-flash",
	OpenAI:    "gpt-4o-mini",
	Anthropic: "claude-3-5-haiku-latest",
}

// Canonical normalizes provider aliases.
func Canonical(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "googleai", "gemini":
		return Google
	case "claude":
		return Anthropic
	default:
		return n
	}
}

// Supported returns the provider names in sorted order.
func Supported() []string {
	names := make([]string, 0, len(defaultModels))
	for name := range defaultModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate returns an error for unknown provider names.
func Validate(name string) error {
	if _, ok := defaultModels[Canonical(name)]; !ok {
		return fmt.Errorf("unknown provider %q (supported: %s)", name, strings.Join(Supported(), ", "))
	}
	return nil
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(name string) string {
	return defaultModels[Canonical(name)]
}
