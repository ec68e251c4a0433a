package cryptox

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pwvault/internal/common"
	"golang.org/x/crypto/scrypt"
)

const (
	// KDFAlgo names the key derivation function recorded in exports.
	KDFAlgo = "scrypt"

	// SaltSize is the length of the random salt stored in vault metadata.
	SaltSize = 16

	// KeySize is the derived key length (AES-256).
	KeySize = 32
)

var (
	ErrEmptySalt         = errors.New("kdf: salt must not be empty")
	ErrResourceExhausted = errors.New("kdf: cannot allocate working memory")
)

// KDFParams are the scrypt cost parameters. They are fixed for every vault so
// that vaults and exports stay interoperable.
type KDFParams struct {
	N      int `json:"N"`
	R      int `json:"r"`
	P      int `json:"p"`
	KeyLen int `json:"-"`
}

// DefaultKDFParams returns the policy parameters: N=16384, r=8, p=1, 32 bytes.
func DefaultKDFParams() KDFParams {
	return KDFParams{N: 16384, R: 8, P: 1, KeyLen: KeySize}
}

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey turns a master password and salt into a symmetric key.
// Identical inputs always produce identical output.
//
// A failure inside scrypt (including an allocation panic for oversized
// parameters) is reported as ErrResourceExhausted.
func DeriveKey(password, salt []byte, p KDFParams) (key []byte, err error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}

	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = fmt.Errorf("%w: %v", ErrResourceExhausted, r)
		}
	}()

	key, err = scrypt.Key(password, salt, p.N, p.R, p.P, p.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}
	return key, nil
}
