// Package cryptox seals small secrets at rest with a passphrase.
//
// The key is derived with argon2id from the passphrase and a random per-value
// salt; the payload is encrypted with AES-256-GCM. A sealed value is laid out
// as salt | nonce | ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 16
	NonceSize = 12
	KeySize   = 32
)

// ErrSealedTooShort is returned when a sealed value cannot even hold its header.
var ErrSealedTooShort = errors.New("sealed value too short")

// DeriveKey stretches a passphrase into a 256-bit AES key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext under a key derived from passphrase.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(NonceSize)

	out := make([]byte, 0, SaltSize+NonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. A wrong passphrase or a tampered value fails
// authentication and returns an error.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if len(sealed) < SaltSize+NonceSize {
		return nil, ErrSealedTooShort
	}
	salt := sealed[:SaltSize]
	nonce := sealed[SaltSize : SaltSize+NonceSize]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, sealed[SaltSize+NonceSize:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
