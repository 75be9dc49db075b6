package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashSecret(t *testing.T) {
	t.Parallel()

	secret := MustGenerateToken(TokenSize256)

	hash, err := HashSecret(secret)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifySecret(secret, hash))
	require.Error(t, VerifySecret("not-the-secret", hash))

	// Hashes are salted, two hashes of the same secret differ.
	hash2, err := HashSecret(secret)
	require.NoError(t, err)
	require.NotEqual(t, hash, hash2)
}

func TestVerifySecretMalformedHash(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=2$!!!$aGFzaA",
	} {
		require.Error(t, VerifySecret("secret", encoded))
	}
}
