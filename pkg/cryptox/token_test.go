package cryptox

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
		{"custom size", 24, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.wantLen)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestGenerateToken_SurvivesQueryEscaping(t *testing.T) {
	// Reset links carry the token as a query parameter.
	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)

	escaped := url.QueryEscape(token)
	unescaped, err := url.QueryUnescape(escaped)
	require.NoError(t, err)
	require.Equal(t, token, unescaped)
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2, "different tokens should have different fingerprints")
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestEqualSecrets(t *testing.T) {
	require.True(t, EqualSecrets("bootstrap-token", "bootstrap-token"))
	require.False(t, EqualSecrets("bootstrap-token", "bootstrap-token2"))
	require.False(t, EqualSecrets("", "bootstrap-token"))
	require.True(t, EqualSecrets("", ""))
}
