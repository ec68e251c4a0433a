// Package metadata persists vault-scoped key/value metadata: the KDF salt,
// the key verifier and the vault creation details.
package metadata

import (
	"context"
)

// Well-known metadata keys. Binary values are stored base64-encoded.
const (
	KeySalt       = "kdf_salt_b64"
	KeyVerifierIV = "verifier_iv"
	KeyVerifierCT = "verifier_ct"
	KeyCreatedAt  = "created_at"
	KeyVaultID    = "vault_id"
)

// Repository is the key/value store for vault metadata.
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
