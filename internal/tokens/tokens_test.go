package tokens

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeParseRoundTrip(t *testing.T) {
	secret, err := NewSecret()
	require.NoError(t, err)
	require.Len(t, secret, 40)

	plaintext := Compose(42, secret)
	id, got, err := Parse(plaintext)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
	require.Equal(t, secret, got)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"nodigit",
		"|secret",
		"42|",
		"0|secret",
		"-1|secret",
		"99999999999999999999|secret",
		"abc|secret",
	} {
		_, _, err := Parse(in)
		require.ErrorIs(t, err, ErrInvalidToken, "input %q", in)
	}
}

func TestParseKeepsPipesInSecret(t *testing.T) {
	id, secret, err := Parse("7|se|cret")
	require.NoError(t, err)
	require.EqualValues(t, 7, id)
	require.Equal(t, "se|cret", secret)
}

func TestVerifySecret(t *testing.T) {
	secret, err := NewSecret()
	require.NoError(t, err)
	stored := Sha256Hex(secret)

	require.True(t, VerifySecret(secret, stored))
	require.False(t, VerifySecret(secret+"x", stored))
	require.False(t, VerifySecret(secret, Sha256Hex("other")))
}

func TestSecretsAreUnique(t *testing.T) {
	a, err := NewSecret()
	require.NoError(t, err)
	b, err := NewSecret()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
