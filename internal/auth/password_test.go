package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/shared"
)

func TestHasherRoundTrip(t *testing.T) {
	hasher := NewHasher(4)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	ok, err := hasher.Verify("s3cret-pass", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = hasher.Verify("wrong-pass", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasherSaltsEachHash(t *testing.T) {
	hasher := NewHasher(4)

	first, err := hasher.Hash("same-input")
	require.NoError(t, err)
	second, err := hasher.Hash("same-input")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHasherCorruptHash(t *testing.T) {
	hasher := NewHasher(4)

	ok, err := hasher.Verify("whatever", "not-a-bcrypt-hash")
	require.False(t, ok)
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrCorruptCredential))
}

func TestHasherClampsCost(t *testing.T) {
	hasher := NewHasher(99)

	hash, err := hasher.Hash("pw")
	require.NoError(t, err)
	ok, err := hasher.Verify("pw", hash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGenerateTemporaryPassword(t *testing.T) {
	first, err := GenerateTemporaryPassword(12)
	require.NoError(t, err)
	require.Len(t, first, 12)

	second, err := GenerateTemporaryPassword(12)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	fallback, err := GenerateTemporaryPassword(0)
	require.NoError(t, err)
	require.Len(t, fallback, 12)
}
