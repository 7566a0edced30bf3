// Package securemem keeps provider API keys in memguard-protected memory.
package securemem

import (
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
)

// Purge wipes every protected buffer. Call it once on shutdown; the CLI
// handles signals itself so memguard.CatchInterrupt is not installed.
func Purge() {
	memguard.Purge()
}

// String holds a secret in an encrypted enclave. The zero value and nil are empty.
type String struct {
	mu      sync.Mutex
	enclave *memguard.Enclave
	size    int
}

// NewString seals plaintext. The empty string yields an empty String.
func NewString(plaintext string) *String {
	s := &String{size: len(plaintext)}
	if plaintext != "" {
		s.enclave = memguard.NewEnclave([]byte(plaintext))
	}
	return s
}

// IsEmpty reports whether the secret is empty or destroyed.
func (s *String) IsEmpty() bool {
	return s.Len() == 0
}

// Len returns the length of the secret.
func (s *String) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enclave == nil {
		return 0
	}
	return s.size
}

// WithValue opens the secret for the duration of fn. fn must not retain the value.
func (s *String) WithValue(fn func(string)) {
	if s == nil {
		fn("")
		return
	}
	s.mu.Lock()
	enclave := s.enclave
	s.mu.Unlock()
	if enclave == nil {
		fn("")
		return
	}

	buf, err := enclave.Open()
	if err != nil {
		fn("")
		return
	}
	defer buf.Destroy()
	fn(buf.String())
}

// Reveal returns a copy of the secret in ordinary memory. Prefer WithValue.
func (s *String) Reveal() string {
	var out string
	s.WithValue(func(v string) {
		out = strings.Clone(v)
	})
	return out
}

// Equal compares the secret with other in constant time.
func (s *String) Equal(other string) bool {
	equal := false
	s.WithValue(func(v string) {
		equal = subtle.ConstantTimeCompare([]byte(v), []byte(other)) == 1
	})
	return equal
}

// Destroy drops the enclave. The String is empty afterwards.
func (s *String) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enclave = nil
	s.size = 0
}

// String redacts the secret so it never ends up in logs.
func (s *String) String() string {
	if s.IsEmpty() {
		return ""
	}
	return "[redacted]"
}

// KeyRing stores one secret per provider name.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[string]*String
}

// NewKeyRing creates an empty key ring.
func NewKeyRing() *KeyRing {
	return &KeyRing{keys: make(map[string]*String)}
}

// Set replaces the key stored for provider. An empty value removes it.
func (k *KeyRing) Set(provider, value string) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	k.mu.Lock()
	defer k.mu.Unlock()
	if existing, ok := k.keys[provider]; ok {
		existing.Destroy()
		delete(k.keys, provider)
	}
	if value != "" {
		k.keys[provider] = NewString(value)
	}
}

// Get returns the key for provider, or nil.
func (k *KeyRing) Get(provider string) *String {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[strings.ToLower(strings.TrimSpace(provider))]
}

// Has reports whether a non-empty key is stored for provider.
func (k *KeyRing) Has(provider string) bool {
	return !k.Get(provider).IsEmpty()
}

// Clear destroys every stored key.
func (k *KeyRing) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for name, s := range k.keys {
		s.Destroy()
		delete(k.keys, name)
	}
}
