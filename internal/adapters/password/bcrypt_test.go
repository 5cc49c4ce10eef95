package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "wrong horse"), ErrMismatch)
}

func TestBcryptHasher_Limits(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	_, err := h.Hash("short")
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestBcryptHasher_CompareMalformedHash(t *testing.T) {
	err := BcryptHasher{}.Compare("not-a-hash", "whatever1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}
