package secrets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := Encrypt("AIza-secret", "hunter2")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(sealed))
	assert.NotContains(t, sealed, "AIza-secret")

	plain, err := Decrypt(sealed, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "AIza-secret", plain)
}

func TestEncrypt_Empty(t *testing.T) {
	sealed, err := Encrypt("", "pw")
	require.NoError(t, err)
	assert.Empty(t, sealed)
}

func TestDecrypt_Plaintext(t *testing.T) {
	plain, err := Decrypt("sk-plain", "")
	require.NoError(t, err)
	assert.Equal(t, "sk-plain", plain)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	sealed, err := Encrypt("value", "right")
	require.NoError(t, err)

	_, err = Decrypt(sealed, "wrong")
	assert.True(t, errors.Is(err, ErrInvalidPassword))
}

func TestDecrypt_Malformed(t *testing.T) {
	for _, value := range []string{"enc:!!!", "enc:bm90IGpzb24=", "enc:eyJ2ZXJzaW9uIjo5fQ=="} {
		t.Run(value, func(t *testing.T) {
			_, err := Decrypt(value, "pw")
			assert.True(t, errors.Is(err, ErrInvalidPayload), "got %v", err)
		})
	}
}
