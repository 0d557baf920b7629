package cryptox_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *cryptox.CredentialCipher {
	t.Helper()
	c, err := cryptox.NewCredentialCipher([]byte("test-master-key-for-encryption-12345"))
	require.NoError(t, err)
	return c
}

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	t.Run("exact length used as-is", func(t *testing.T) {
		raw := bytes.Repeat([]byte{0x42}, cryptox.KeySize)
		require.Equal(t, raw, cryptox.DeriveKey(raw))
	})

	t.Run("longer input truncated", func(t *testing.T) {
		raw := append(bytes.Repeat([]byte{0x01}, cryptox.KeySize), bytes.Repeat([]byte{0x02}, 16)...)
		require.Equal(t, raw[:cryptox.KeySize], cryptox.DeriveKey(raw))
	})

	t.Run("shorter input hashed", func(t *testing.T) {
		raw := []byte("sixteen-byte-key")
		sum := sha256.Sum256(raw)
		require.Equal(t, sum[:], cryptox.DeriveKey(raw))
	})

	t.Run("deterministic", func(t *testing.T) {
		raw := []byte("some key material")
		require.Equal(t, cryptox.DeriveKey(raw), cryptox.DeriveKey(raw))
	})

	t.Run("hashed and truncated keys differ", func(t *testing.T) {
		prefix := bytes.Repeat([]byte{0x07}, cryptox.KeySize)
		short := prefix[:16]
		long := append(append([]byte{}, prefix...), bytes.Repeat([]byte{0x09}, 16)...)

		require.NotEqual(t, cryptox.DeriveKey(short), cryptox.DeriveKey(long))
		require.Equal(t, prefix, cryptox.DeriveKey(long))
	})
}

func TestNewCredentialCipherRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	_, err := cryptox.NewCredentialCipher(nil)
	require.ErrorIs(t, err, cryptox.ErrEmptyKey)

	_, err = cryptox.NewCredentialCipher([]byte{})
	require.ErrorIs(t, err, cryptox.ErrEmptyKey)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCipher(t)

	inputs := []string{
		"",
		"smtp-password",
		"contains:colon:characters",
		":",
		strings.Repeat("x", 16),
		strings.Repeat("long secret ", 50),
		"пароль🔒",
	}

	for _, in := range inputs {
		envelope, err := c.Encrypt(in)
		require.NoError(t, err)

		ivPart, ctPart, found := strings.Cut(envelope, ":")
		require.True(t, found)
		iv, err := base64.StdEncoding.DecodeString(ivPart)
		require.NoError(t, err)
		require.Len(t, iv, 16)
		require.NotContains(t, ctPart, ":", "ciphertext segment is plain base64")

		out, err := c.Decrypt(envelope)
		require.NoError(t, err)
		require.Equal(t, in, out)
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	t.Parallel()
	c := newTestCipher(t)

	a, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := c.Encrypt("same plaintext")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "each encryption should use a new iv")
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	t.Parallel()
	c := newTestCipher(t)
	other, err := cryptox.NewCredentialCipher([]byte("a-completely-different-key"))
	require.NoError(t, err)

	envelope, err := c.Encrypt("smtp-password")
	require.NoError(t, err)

	out, err := other.Decrypt(envelope)
	if err == nil {
		// CBC has no authentication; a wrong key may still unpad cleanly.
		require.NotEqual(t, "smtp-password", out)
		return
	}
	require.ErrorIs(t, err, cryptox.ErrDecryption)
}

func TestDecryptMalformedEnvelopes(t *testing.T) {
	t.Parallel()
	c := newTestCipher(t)

	iv := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 16))
	block := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 16))

	tests := []struct {
		name     string
		envelope string
	}{
		{"empty", ""},
		{"missing separator", iv + block},
		{"bad iv base64", "!!!:" + block},
		{"bad ciphertext base64", iv + ":***"},
		{"short iv", base64.StdEncoding.EncodeToString([]byte("short")) + ":" + block},
		{"empty ciphertext", iv + ":"},
		{"unaligned ciphertext", iv + ":" + base64.StdEncoding.EncodeToString([]byte("seventeen bytes!!"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.envelope)
			require.ErrorIs(t, err, cryptox.ErrDecryption)
		})
	}
}
