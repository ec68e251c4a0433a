package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/pwvault/internal/common"
	"github.com/dmitrijs2005/pwvault/internal/config"
	"github.com/dmitrijs2005/pwvault/internal/cryptox"
	"github.com/dmitrijs2005/pwvault/internal/exporter"
	"github.com/dmitrijs2005/pwvault/internal/logging"
	"github.com/dmitrijs2005/pwvault/internal/services"
	"github.com/dmitrijs2005/pwvault/internal/storage"
)

// maxInitRounds bounds how often a new vault password may be re-entered
// after a confirmation mismatch.
const maxInitRounds = 3

type App struct {
	config        *config.Config
	db            *sql.DB
	log           logging.Logger
	unlockService services.UnlockService
	entryService  services.EntryService
	exportService services.ExportService
	key           *cryptox.Key
	reader        *bufio.Reader
	out           io.Writer
}

// NewApp opens the vault database and wires the services. It does not unlock.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	us := services.NewUnlockService(db, log, services.UnlockOptions{
		ConfirmVerifierRepair: c.ConfirmVerifierRepair,
	})
	es := services.NewEntryService(db, log)
	xs := services.NewExportService(db, log, services.ExportOptions{
		Dir:     c.ExportDir,
		Timeout: c.ExportTimeout,
		S3: exporter.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		},
	})

	return &App{
		config:        c,
		db:            db,
		log:           log,
		unlockService: us,
		entryService:  es,
		exportService: xs,
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
	}, nil
}

// Run unlocks the vault and serves commands until exit or EOF. A failed
// unlock is returned so the caller can exit non-zero.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "pwvault (type 'help' for commands)")

	if err := a.Unlock(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.reader)
	return nil
}

const newVaultBanner = "No vault found. Choose a master password; it cannot be recovered if lost."

// Unlock obtains the vault key. Creating a new vault may be retried when
// the confirmation does not match; every other failure is final.
func (a *App) Unlock(ctx context.Context) error {
	p := &terminalPrompter{reader: a.reader, out: a.out}

	initialized, err := a.unlockService.IsInitialized(ctx)
	if err != nil {
		a.log.Error(ctx, "unlock failed", "error", err)
		return fmt.Errorf("unlock vault: %w", err)
	}
	if !initialized {
		p.Notify(newVaultBanner)
	}

	for round := 1; ; round++ {
		key, err := a.unlockService.Unlock(ctx, p)
		if err == nil {
			a.key = key
			return nil
		}

		retryable := errors.Is(err, common.ErrPasswordMismatch) || errors.Is(err, common.ErrEmptyPassword)
		if !retryable || round >= maxInitRounds {
			a.log.Error(ctx, "unlock failed", "error", err)
			return fmt.Errorf("unlock vault: %w", err)
		}
		p.Notify(describeError(err) + " Try again.")
	}
}

func (a *App) isUnlocked() bool {
	return a.key != nil
}

// Close wipes the key and closes the database. It is safe to call twice.
func (a *App) Close() {
	if a.key != nil {
		a.key.Wipe()
		a.key = nil
	}
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

// describeError turns service errors into short user-facing text.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return "Entry not found."
	case errors.Is(err, common.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, common.ErrEmptyPassword):
		return "Password must not be empty."
	case errors.Is(err, common.ErrValidation):
		return "Invalid input: title is required."
	case errors.Is(err, common.ErrTooManyAttempts):
		return "Too many failed attempts."
	case errors.Is(err, cryptox.ErrAuthenticationFailure):
		return "Decryption failed: wrong key or corrupted record."
	case errors.Is(err, common.ErrNotInitialized):
		return "Vault is not initialized."
	default:
		return "Error: " + err.Error()
	}
}

// fail reports err to the user and returns it.
func (a *App) fail(ctx context.Context, err error) error {
	a.log.Debug(ctx, "command failed", "error", err)
	fmt.Fprintln(a.out, describeError(err))
	return err
}
