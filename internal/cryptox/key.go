package cryptox

import (
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/pwvault/internal/common"
)

// VerifierMarker is the known plaintext sealed into the vault verifier.
var VerifierMarker = []byte("pwvault:verifier:v1")

var ErrKeyWiped = errors.New("cipher: key has been wiped")

// Key is the unlocked vault key. It is created once per process by the unlock
// flow and passed explicitly to every operation that touches a secret field.
// Call Wipe when the key is no longer needed.
type Key struct {
	b []byte
}

// NewKey copies b into a new Key. b must be KeySize bytes long.
func NewKey(b []byte) (*Key, error) {
	if len(b) != KeySize {
		return nil, ErrInvalidKey
	}
	k := &Key{b: make([]byte, KeySize)}
	copy(k.b, b)
	return k, nil
}

// Seal encrypts plaintext under the key with a fresh iv.
func (k *Key) Seal(plaintext []byte) (iv, sealed []byte, err error) {
	if k == nil || k.b == nil {
		return nil, nil, ErrKeyWiped
	}
	return Encrypt(k.b, plaintext)
}

// Open decrypts a sealed field.
func (k *Key) Open(iv, sealed []byte) ([]byte, error) {
	if k == nil || k.b == nil {
		return nil, ErrKeyWiped
	}
	return Decrypt(k.b, iv, sealed)
}

// Equal reports whether both keys hold the same bytes, in constant time.
// It exists so that two derivations of the same password can be checked
// against each other without exposing the key bytes; the vault itself
// relies on the stored verifier instead.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil || k.b == nil || other.b == nil {
		return false
	}
	return subtle.ConstantTimeCompare(k.b, other.b) == 1
}

// Wipe zeroes the key material. The key is unusable afterwards.
func (k *Key) Wipe() {
	if k == nil {
		return
	}
	common.WipeByteArray(k.b)
	k.b = nil
}

// MakeVerifier seals VerifierMarker under key.
func MakeVerifier(k *Key) (iv, sealed []byte, err error) {
	return k.Seal(VerifierMarker)
}

// CheckVerifier reports whether (iv, sealed) opens to VerifierMarker under k.
// A failed open is returned as ErrAuthenticationFailure.
func CheckVerifier(k *Key, iv, sealed []byte) (bool, error) {
	plain, err := k.Open(iv, sealed)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(plain)
	return subtle.ConstantTimeCompare(plain, VerifierMarker) == 1, nil
}
