// Package cryptox implements the vault's cryptographic primitives: scrypt key
// derivation and AES-256-GCM sealing of individual fields.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/pwvault/internal/common"
)

// NonceSize is the AES-GCM nonce (iv) length.
const NonceSize = 12

var (
	ErrAuthenticationFailure = errors.New("cipher: message authentication failed")
	ErrInvalidKey            = errors.New("cipher: key must be 32 bytes")
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM under key.
//
// A new random 12-byte nonce is generated for every call and returned as iv.
// The sealed output is the ciphertext with the 16-byte tag appended.
//
// Example:
//
//	iv, sealed, err := cryptox.Encrypt(key, []byte("p@ss"))
//	if err != nil {
//	    return err
//	}
//	plain, err := cryptox.Decrypt(key, iv, sealed)
func Encrypt(key, plaintext []byte) (iv, sealed []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	iv = common.GenerateRandByteArray(NonceSize)
	sealed = aesgcm.Seal(nil, iv, plaintext, nil)

	return iv, sealed, nil
}

// Decrypt opens sealed text produced by Encrypt. Any tampering, wrong key,
// bad iv length or truncation yields ErrAuthenticationFailure and no plaintext.
func Decrypt(key, iv, sealed []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aesgcm.NonceSize() || len(sealed) < aesgcm.Overhead() {
		return nil, ErrAuthenticationFailure
	}

	plaintext, err := aesgcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return plaintext, nil
}
