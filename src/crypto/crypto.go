// Package crypto implements the session token codec: authenticated
// encryption of the serialized session record under a process-wide key, so
// all session state can live client-side.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/Zillorz/svue-api/src/models"
)

// NonceSize is the AES-GCM nonce length. Tokens are laid out as
// nonce || ciphertext || tag.
const NonceSize = 12

func loadKey() ([]byte, error) {
	enc := os.Getenv("ENKEY")
	if enc == "" {
		return nil, models.ErrNoKey
	}
	key, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, models.ErrNoKey
	}
	return key, nil
}

func newAEAD() (cipher.AEAD, error) {
	key, err := loadKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNoKey, err)
	}
	return cipher.NewGCM(block)
}

// CreateToken seals the plaintext under the process key with a fresh
// random nonce. Safe for concurrent use; no state is shared between calls.
func CreateToken(plaintext string) ([]byte, error) {
	aead, err := newAEAD()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// DecryptToken opens a sealed token and returns its plaintext. The failure
// modes are distinguishable with errors.Is: ErrTokenLength for truncated
// input, ErrTokenAuth for a failed tag check (tampered or wrong-key
// tokens), ErrTokenDecoding for plaintext that is not valid text and
// ErrNoKey when the process key is not configured.
func DecryptToken(token []byte) (string, error) {
	aead, err := newAEAD()
	if err != nil {
		return "", err
	}

	if len(token) <= NonceSize {
		return "", models.ErrTokenLength
	}

	plaintext, err := aead.Open(nil, token[:NonceSize], token[NonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTokenAuth, err)
	}

	if !utf8.Valid(plaintext) {
		return "", models.ErrTokenDecoding
	}
	return string(plaintext), nil
}
