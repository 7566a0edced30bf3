package provider

import (
	"os"
	"strings"
)

// providerEnvVars lists the environment variables that can supply each
// provider's API key, in lookup order.
var providerEnvVars = map[string][]string{
	Google:    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_GENAI_API_KEY"},
	OpenAI:    {"OPENAI_API_KEY"},
	Anthropic: {"ANTHROPIC_API_KEY"},
}

// resolveAPIKey prefers an explicit key and falls back to the provider's
// environment variables. The empty string means no key is available.
func resolveAPIKey(providerName, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}

	for _, envVar := range providerEnvVars[Canonical(providerName)] {
		if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
			return value
		}
	}
	return ""
}

// ResolveAPIKey returns the configured key or the first non-empty
// environment variable known for the provider.
func ResolveAPIKey(providerName, explicit string) string {
	return resolveAPIKey(providerName, explicit)
}

// EnvVarHints returns the environment variables checked for a provider,
// for error messages.
func EnvVarHints(providerName string) []string {
	hints := providerEnvVars[Canonical(providerName)]
	out := make([]string, len(hints))
	copy(out, hints)
	return out
}
