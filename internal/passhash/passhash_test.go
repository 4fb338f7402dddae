package passhash_test

import (
	"strings"
	"testing"

	"github.com/aretw0/onboarding/internal/passhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = passhash.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashVerify(t *testing.T) {
	encoded, err := passhash.Hash("Abc123!@", fast)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))

	ok, err := passhash.Verify("Abc123!@", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = passhash.Verify("Abc123!#", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_Salted(t *testing.T) {
	a, err := passhash.Hash("same", fast)
	require.NoError(t, err)
	b, err := passhash.Hash("same", fast)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_Malformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=1$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	} {
		_, err := passhash.Verify("x", encoded)
		assert.ErrorIs(t, err, passhash.ErrInvalidHash, encoded)
	}
}
