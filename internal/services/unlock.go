// Package services contains the vault's application services: unlocking the
// vault, managing entries and exporting snapshots.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pwvault/internal/common"
	"github.com/dmitrijs2005/pwvault/internal/cryptox"
	"github.com/dmitrijs2005/pwvault/internal/dbx"
	"github.com/dmitrijs2005/pwvault/internal/logging"
	"github.com/dmitrijs2005/pwvault/internal/repositories/metadata"
	"github.com/google/uuid"
)

// MaxUnlockAttempts bounds password attempts against an existing vault.
const MaxUnlockAttempts = 3

// deriveKey is a test seam for cryptox.DeriveKey.
var deriveKey = cryptox.DeriveKey

// Prompter is the interactive capability the unlock flow consumes.
// PromptSecret must read input without echo. Buffers it returns are wiped
// by the unlock flow.
type Prompter interface {
	PromptSecret(ctx context.Context, label string) ([]byte, error)
	Notify(msg string)
}

// VaultInfo describes the persisted vault metadata.
type VaultInfo struct {
	Initialized bool
	VaultID     string
	CreatedAt   string
}

// UnlockService turns a master password into the vault key.
//
// Contract:
//   - Unlock on a fresh database initialises the vault (new password +
//     confirmation) and returns the new key.
//   - Unlock on an existing vault allows MaxUnlockAttempts password attempts
//     and fails with common.ErrTooManyAttempts afterwards.
//   - If the stored verifier is missing, the first supplied password is
//     adopted and a new verifier is written.
type UnlockService interface {
	IsInitialized(ctx context.Context) (bool, error)
	Info(ctx context.Context) (*VaultInfo, error)
	Unlock(ctx context.Context, p Prompter) (*cryptox.Key, error)
}

// UnlockOptions tune the unlock flow.
type UnlockOptions struct {
	// ConfirmVerifierRepair asks for the password twice before a missing
	// verifier is recreated.
	ConfirmVerifierRepair bool
}

type unlockService struct {
	db     *sql.DB
	log    logging.Logger
	params cryptox.KDFParams
	opts   UnlockOptions
	now    func() time.Time
}

// NewUnlockService constructs an UnlockService over the vault database.
func NewUnlockService(db *sql.DB, log logging.Logger, opts UnlockOptions) UnlockService {
	return &unlockService{
		db:     db,
		log:    log.With("component", "unlock"),
		params: cryptox.DefaultKDFParams(),
		opts:   opts,
		now:    time.Now,
	}
}

func (s *unlockService) metadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *unlockService) IsInitialized(ctx context.Context) (bool, error) {
	salt, err := s.metadataRepo().Get(ctx, metadata.KeySalt)
	if err != nil {
		return false, err
	}
	return salt != nil, nil
}

func (s *unlockService) Info(ctx context.Context) (*VaultInfo, error) {
	m, err := s.metadataRepo().List(ctx)
	if err != nil {
		return nil, err
	}
	_, ok := m[metadata.KeySalt]
	return &VaultInfo{
		Initialized: ok,
		VaultID:     string(m[metadata.KeyVaultID]),
		CreatedAt:   string(m[metadata.KeyCreatedAt]),
	}, nil
}

// Unlock runs the initialisation or verification flow and returns the key.
// The returned key must be wiped by the caller.
func (s *unlockService) Unlock(ctx context.Context, p Prompter) (*cryptox.Key, error) {
	repo := s.metadataRepo()

	saltB64, err := repo.Get(ctx, metadata.KeySalt)
	if err != nil {
		return nil, fmt.Errorf("read vault metadata: %w", err)
	}
	if saltB64 == nil {
		return s.initialize(ctx, p)
	}

	salt, err := base64.StdEncoding.DecodeString(string(saltB64))
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: bad %s", common.ErrCorruptMetadata, metadata.KeySalt)
	}

	ivB64, err := repo.Get(ctx, metadata.KeyVerifierIV)
	if err != nil {
		return nil, fmt.Errorf("read vault metadata: %w", err)
	}
	ctB64, err := repo.Get(ctx, metadata.KeyVerifierCT)
	if err != nil {
		return nil, fmt.Errorf("read vault metadata: %w", err)
	}
	if ivB64 == nil || ctB64 == nil {
		return s.repairVerifier(ctx, p, salt)
	}

	// An undecodable verifier is treated like one that fails to open.
	iv, _ := base64.StdEncoding.DecodeString(string(ivB64))
	ct, _ := base64.StdEncoding.DecodeString(string(ctB64))

	for attempt := 1; attempt <= MaxUnlockAttempts; attempt++ {
		password, err := p.PromptSecret(ctx, "Master password")
		if err != nil {
			return nil, fmt.Errorf("read master password: %w", err)
		}

		key, err := s.keyFromPassword(password, salt)
		if err != nil {
			return nil, err
		}

		ok, verr := cryptox.CheckVerifier(key, iv, ct)
		if verr == nil && ok {
			s.log.Info(ctx, "vault unlocked", "attempt", attempt)
			return key, nil
		}
		key.Wipe()

		remaining := MaxUnlockAttempts - attempt
		s.log.Warn(ctx, "unlock attempt failed", "attempt", attempt, "remaining", remaining)
		if remaining > 0 {
			p.Notify(fmt.Sprintf("Invalid master password. %d attempt(s) remaining.", remaining))
		}
	}

	s.log.Error(ctx, "unlock attempts exhausted", "max", MaxUnlockAttempts)
	return nil, fmt.Errorf("%w: %w", common.ErrTooManyAttempts, common.ErrInvalidCredential)
}

// initialize creates the salt and verifier for a new vault. Nothing is
// written unless the password is confirmed.
func (s *unlockService) initialize(ctx context.Context, p Prompter) (*cryptox.Key, error) {
	password, err := s.promptConfirmed(ctx, p, "New master password")
	if err != nil {
		return nil, err
	}

	salt := cryptox.NewSalt()
	key, err := s.keyFromPassword(password, salt)
	if err != nil {
		return nil, err
	}

	iv, ct, err := cryptox.MakeVerifier(key)
	if err != nil {
		key.Wipe()
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	vaultID := uuid.NewString()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			metadata.KeySalt:       b64(salt),
			metadata.KeyVerifierIV: b64(iv),
			metadata.KeyVerifierCT: b64(ct),
			metadata.KeyCreatedAt:  []byte(s.now().UTC().Format(time.RFC3339)),
			metadata.KeyVaultID:    []byte(vaultID),
		})
	})
	if err != nil {
		key.Wipe()
		return nil, fmt.Errorf("persist vault metadata: %w", err)
	}

	s.log.Info(ctx, "vault initialized", "vault_id", vaultID)
	return key, nil
}

// repairVerifier adopts the supplied password when the verifier is absent.
// There is no way to check the password here beyond the operator's word.
func (s *unlockService) repairVerifier(ctx context.Context, p Prompter, salt []byte) (*cryptox.Key, error) {
	var (
		password []byte
		err      error
	)
	if s.opts.ConfirmVerifierRepair {
		p.Notify("Vault verifier is missing. Enter the master password twice to recreate it.")
		password, err = s.promptConfirmed(ctx, p, "Master password")
	} else {
		password, err = p.PromptSecret(ctx, "Master password")
		if err == nil && len(password) == 0 {
			err = common.ErrEmptyPassword
		}
	}
	if err != nil {
		return nil, err
	}

	key, err := s.keyFromPassword(password, salt)
	if err != nil {
		return nil, err
	}

	iv, ct, err := cryptox.MakeVerifier(key)
	if err != nil {
		key.Wipe()
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			metadata.KeyVerifierIV: b64(iv),
			metadata.KeyVerifierCT: b64(ct),
		})
	})
	if err != nil {
		key.Wipe()
		return nil, fmt.Errorf("persist verifier: %w", err)
	}

	s.log.Warn(ctx, "verifier was missing and has been recreated from the supplied password")
	p.Notify("Vault verifier was missing and has been recreated.")
	return key, nil
}

// promptConfirmed reads a password twice. The confirmation buffer is always
// wiped; the password is wiped on failure.
func (s *unlockService) promptConfirmed(ctx context.Context, p Prompter, label string) ([]byte, error) {
	password, err := p.PromptSecret(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("read master password: %w", err)
	}
	if len(password) == 0 {
		return nil, common.ErrEmptyPassword
	}

	confirm, err := p.PromptSecret(ctx, "Confirm master password")
	if err != nil {
		common.WipeByteArray(password)
		return nil, fmt.Errorf("read master password: %w", err)
	}
	defer common.WipeByteArray(confirm)

	if subtle.ConstantTimeCompare(password, confirm) != 1 {
		common.WipeByteArray(password)
		return nil, common.ErrPasswordMismatch
	}
	return password, nil
}

// keyFromPassword derives the vault key and wipes password and the raw key
// bytes.
func (s *unlockService) keyFromPassword(password, salt []byte) (*cryptox.Key, error) {
	defer common.WipeByteArray(password)

	raw, err := deriveKey(password, salt, s.params)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	defer common.WipeByteArray(raw)

	return cryptox.NewKey(raw)
}

func b64(b []byte) []byte {
	return []byte(base64.StdEncoding.EncodeToString(b))
}
