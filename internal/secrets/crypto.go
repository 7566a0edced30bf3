// Package secrets encrypts individual config values with a password.
//
// Encrypted values are stored as "enc:" followed by base64 of a JSON payload
// holding the scrypt salt, the AES-GCM nonce and the ciphertext.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Prefix marks an encrypted config value.
const Prefix = "enc:"

const (
	payloadVersion = 1
	saltSize       = 16
	keySize        = 32
	scryptN        = 1 << 15
)

var (
	// ErrInvalidPassword is returned when the password cannot open the value.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidPayload is returned for values that are not well-formed.
	ErrInvalidPayload = errors.New("invalid encrypted payload")
)

type payload struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// IsEncrypted reports whether value carries the encrypted prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Encrypt seals value with a key derived from password. The empty string
// stays empty.
func Encrypt(value, password string) (string, error) {
	if value == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	raw, err := json.Marshal(payload{
		Version:    payloadVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, []byte(value), nil),
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return Prefix + base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt opens a value produced by Encrypt. Values without the prefix are
// returned unchanged.
func Decrypt(value, password string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Version != payloadVersion {
		return "", fmt.Errorf("%w: unsupported version %d", ErrInvalidPayload, p.Version)
	}

	gcm, err := newGCM(password, p.Salt)
	if err != nil {
		return "", err
	}
	if len(p.Nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("%w: nonce size %d", ErrInvalidPayload, len(p.Nonce))
	}
	plain, err := gcm.Open(nil, p.Nonce, p.Ciphertext, nil)
	if err != nil {
		return "", ErrInvalidPassword
	}
	return string(plain), nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
