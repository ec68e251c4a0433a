package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pwvault/internal/common"
	"github.com/dmitrijs2005/pwvault/internal/cryptox"
	"github.com/dmitrijs2005/pwvault/internal/dbx"
	"github.com/dmitrijs2005/pwvault/internal/logging"
	"github.com/dmitrijs2005/pwvault/internal/models"
	"github.com/dmitrijs2005/pwvault/internal/repositories/entries"
)

// EntryService manages vault entries. Only the password field is encrypted;
// every operation that touches it takes the unlocked key explicitly.
// Password buffers passed in remain owned by the caller.
type EntryService interface {
	Add(ctx context.Context, fields models.EntryFields, password []byte, key *cryptox.Key) (int64, error)
	List(ctx context.Context, includeArchived bool) ([]models.EntrySummary, error)
	Search(ctx context.Context, query string) ([]models.EntrySummary, error)
	View(ctx context.Context, id int64) (*models.EntryDetail, error)
	Reveal(ctx context.Context, id int64, key *cryptox.Key) ([]byte, error)
	Update(ctx context.Context, id int64, patch models.EntryPatch) error
	ChangeSecret(ctx context.Context, id int64, newPassword []byte, key *cryptox.Key) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	SetFavorite(ctx context.Context, id int64, favorite bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (total, archived int, err error)
}

type entryService struct {
	db   *sql.DB
	repo entries.Repository
	log  logging.Logger
	now  func() time.Time
}

// NewEntryService constructs an EntryService over the vault database.
func NewEntryService(db *sql.DB, log logging.Logger) EntryService {
	return newEntryService(db, log, time.Now)
}

func newEntryService(db *sql.DB, log logging.Logger, now func() time.Time) *entryService {
	return &entryService{
		db:   db,
		repo: entries.NewSQLiteRepository(db),
		log:  log.With("component", "entries"),
		now:  now,
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	return nil
}

func (s *entryService) Add(ctx context.Context, fields models.EntryFields, password []byte, key *cryptox.Key) (int64, error) {
	if err := validateTitle(fields.Title); err != nil {
		return 0, err
	}

	iv, sealed, err := key.Seal(password)
	if err != nil {
		return 0, fmt.Errorf("encryption error: %w", err)
	}

	now := s.now()
	e := &models.Entry{
		Title:     fields.Title,
		URL:       fields.URL,
		Username:  fields.Username,
		Tags:      fields.Tags,
		Notes:     fields.Notes,
		PwdIV:     iv,
		PwdCT:     sealed,
		Favorite:  fields.Favorite,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("saving error: %w", err)
	}

	s.log.Info(ctx, "entry added", "id", id)
	return id, nil
}

func (s *entryService) List(ctx context.Context, includeArchived bool) ([]models.EntrySummary, error) {
	rows, err := s.repo.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	result := make([]models.EntrySummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.Summary())
	}
	return result, nil
}

// Search never returns archived entries.
func (s *entryService) Search(ctx context.Context, query string) ([]models.EntrySummary, error) {
	rows, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	result := make([]models.EntrySummary, 0)
	for _, row := range rows {
		summary := row.Summary()
		if summary.Matches(q) {
			result = append(result, summary)
		}
	}
	return result, nil
}

func (s *entryService) View(ctx context.Context, id int64) (*models.EntryDetail, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving entry: %w", err)
	}
	d := e.Detail()
	return &d, nil
}

// Reveal decrypts the stored password. A decryption failure means the key
// does not match or the record is corrupted; it is always returned.
func (s *entryService) Reveal(ctx context.Context, id int64, key *cryptox.Key) ([]byte, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving entry: %w", err)
	}

	password, err := key.Open(e.PwdIV, e.PwdCT)
	if err != nil {
		s.log.Error(ctx, "password decryption failed", "id", id, "error", err)
		return nil, fmt.Errorf("error decrypting entry %d: %w", id, err)
	}
	return password, nil
}

// Update applies patch inside one transaction so the read and the write see
// the same row.
func (s *entryService) Update(ctx context.Context, id int64, patch models.EntryPatch) error {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return err
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entries.NewSQLiteRepository(tx)

		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(e)
		e.UpdatedAt = s.now()
		return repo.Update(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("error updating entry: %w", err)
	}

	s.log.Info(ctx, "entry updated", "id", id)
	return nil
}

// ChangeSecret seals newPassword under a fresh iv and replaces the stored
// pair in one statement.
func (s *entryService) ChangeSecret(ctx context.Context, id int64, newPassword []byte, key *cryptox.Key) error {
	iv, sealed, err := key.Seal(newPassword)
	if err != nil {
		return fmt.Errorf("encryption error: %w", err)
	}

	if err := s.repo.UpdateSecret(ctx, id, iv, sealed, s.now()); err != nil {
		return fmt.Errorf("error changing password: %w", err)
	}

	s.log.Info(ctx, "entry password changed", "id", id)
	return nil
}

// SetArchived always advances updated_at, even when the flag is unchanged.
func (s *entryService) SetArchived(ctx context.Context, id int64, archived bool) error {
	if err := s.repo.SetArchived(ctx, id, archived, s.now()); err != nil {
		return fmt.Errorf("error archiving entry: %w", err)
	}
	s.log.Info(ctx, "entry archive flag set", "id", id, "archived", archived)
	return nil
}

func (s *entryService) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	if err := s.repo.SetFavorite(ctx, id, favorite, s.now()); err != nil {
		return fmt.Errorf("error marking entry: %w", err)
	}
	return nil
}

func (s *entryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	s.log.Info(ctx, "entry deleted", "id", id)
	return nil
}

func (s *entryService) Count(ctx context.Context) (total, archived int, err error) {
	return s.repo.Count(ctx)
}
