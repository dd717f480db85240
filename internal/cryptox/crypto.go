// Package cryptox seals small blobs at rest with AES-GCM under a key derived
// from a user-supplied secret.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

// ErrMalformed is returned by Open when the blob is too short to hold the
// salt and nonce, or when authentication fails.
var ErrMalformed = errors.New("sealed blob is malformed or was tampered with")

// DeriveKey stretches secret into a 256-bit AES key with Argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Wipe zeroes b in place. It is safe to call with nil.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under a key derived from secret. The result is
// laid out as salt | nonce | ciphertext, so Open needs nothing but the
// secret. Every call uses a fresh salt and nonce.
func Seal(plaintext, secret []byte) ([]byte, error) {
	salt, err := RandomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	nonce, err := RandomBytes(nonceSize)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	key := DeriveKey(secret, salt)
	defer Wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(blob, secret []byte) ([]byte, error) {
	if len(blob) < saltSize+nonceSize {
		return nil, ErrMalformed
	}
	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]

	key := DeriveKey(secret, salt)
	defer Wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, blob[saltSize+nonceSize:], nil)
	if err != nil {
		return nil, ErrMalformed
	}
	return plaintext, nil
}
