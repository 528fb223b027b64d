package crypto

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/Zillorz/svue-api/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setKey(t *testing.T) {
	t.Helper()
	t.Setenv("ENKEY", base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")))
}

func TestRoundTrip(t *testing.T) {
	setKey(t)

	plaintext := `{"username":"student","password":"hunter2","cookie":null,"expiry":"1700000000000","district_url":"md-mcps-psv.edupoint.com"}`
	token, err := CreateToken(plaintext)
	require.NoError(t, err)

	decrypted, err := DecryptToken(token)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestFreshNoncePerCall(t *testing.T) {
	setKey(t)

	a, err := CreateToken("same input")
	require.NoError(t, err)
	b, err := CreateToken("same input")
	require.NoError(t, err)

	assert.NotEqual(t, a[:NonceSize], b[:NonceSize])
	assert.NotEqual(t, a, b)
}

func TestTamperedTokenFailsAuthentication(t *testing.T) {
	setKey(t)

	token, err := CreateToken("sensitive payload")
	require.NoError(t, err)

	// Flipping any byte must surface as an authentication failure, never a
	// silent wrong-value decode.
	for i := range token {
		tampered := make([]byte, len(token))
		copy(tampered, token)
		tampered[i] ^= 0x01

		_, err := DecryptToken(tampered)
		require.Error(t, err, "byte %d", i)
		assert.ErrorIs(t, err, models.ErrTokenAuth, "byte %d", i)
	}
}

func TestWrongKeyFailsAuthentication(t *testing.T) {
	setKey(t)
	token, err := CreateToken("payload")
	require.NoError(t, err)

	t.Setenv("ENKEY", base64.StdEncoding.EncodeToString([]byte("fedcba9876543210")))
	_, err = DecryptToken(token)
	assert.ErrorIs(t, err, models.ErrTokenAuth)
}

func TestShortTokenLength(t *testing.T) {
	setKey(t)

	for _, n := range []int{0, 1, NonceSize - 1, NonceSize} {
		_, err := DecryptToken(make([]byte, n))
		assert.ErrorIs(t, err, models.ErrTokenLength, "length %d", n)
	}
}

func TestMissingKey(t *testing.T) {
	t.Setenv("ENKEY", "")

	_, err := CreateToken("anything")
	assert.ErrorIs(t, err, models.ErrNoKey)

	_, err = DecryptToken(make([]byte, 64))
	assert.ErrorIs(t, err, models.ErrNoKey)
}

func TestUndecodableKey(t *testing.T) {
	t.Setenv("ENKEY", "not base64 !!!")

	_, err := CreateToken("anything")
	assert.ErrorIs(t, err, models.ErrNoKey)
}

func TestErrorKindsAreDistinct(t *testing.T) {
	setKey(t)

	token, err := CreateToken("payload")
	require.NoError(t, err)
	token[len(token)-1] ^= 0xFF

	_, err = DecryptToken(token)
	assert.True(t, errors.Is(err, models.ErrTokenAuth))
	assert.False(t, errors.Is(err, models.ErrTokenLength))
	assert.False(t, errors.Is(err, models.ErrNoKey))
}
