package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pwvault/internal/common"
	"github.com/dmitrijs2005/pwvault/internal/cryptox"
	"github.com/dmitrijs2005/pwvault/internal/dbx"
	"github.com/dmitrijs2005/pwvault/internal/exporter"
	"github.com/dmitrijs2005/pwvault/internal/logging"
	"github.com/dmitrijs2005/pwvault/internal/models"
	"github.com/dmitrijs2005/pwvault/internal/repositories/entries"
	"github.com/dmitrijs2005/pwvault/internal/repositories/metadata"
	"github.com/dmitrijs2005/pwvault/internal/timex"
)

// openSink is a test seam for exporter.Open.
var openSink = exporter.Open

// ExportService produces the non-decrypting vault snapshot. Secrets stay
// sealed; restoring a snapshot requires the master password.
type ExportService interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	// Export writes the snapshot to dest and returns where it was stored.
	// An empty dest uses the configured export directory.
	Export(ctx context.Context, dest string) (string, error)
}

type ExportOptions struct {
	Dir     string
	Timeout time.Duration
	S3      exporter.S3Config
}

type exportService struct {
	db   *sql.DB
	log  logging.Logger
	opts ExportOptions
	now  func() time.Time
}

func NewExportService(db *sql.DB, log logging.Logger, opts ExportOptions) ExportService {
	return &exportService{
		db:   db,
		log:  log.With("component", "export"),
		opts: opts,
		now:  time.Now,
	}
}

func (s *exportService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap *models.Snapshot

	// one read transaction so metadata and entries agree
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		m, err := metadata.NewSQLiteRepository(tx).List(ctx)
		if err != nil {
			return fmt.Errorf("read vault metadata: %w", err)
		}
		salt, ok := m[metadata.KeySalt]
		if !ok {
			return common.ErrNotInitialized
		}

		rows, err := entries.NewSQLiteRepository(tx).ListAll(ctx)
		if err != nil {
			return fmt.Errorf("read entries: %w", err)
		}

		params := cryptox.DefaultKDFParams()
		snap = &models.Snapshot{
			Meta: models.SnapshotMeta{
				KDF: models.KDFMeta{
					Algo:    cryptox.KDFAlgo,
					N:       params.N,
					R:       params.R,
					P:       params.P,
					SaltB64: string(salt),
				},
				CreatedAt:  string(m[metadata.KeyCreatedAt]),
				VaultID:    string(m[metadata.KeyVaultID]),
				ExportedAt: s.now().UTC().Format(time.RFC3339),
			},
			Entries: make([]models.SnapshotEntry, 0, len(rows)),
		}
		for _, e := range rows {
			snap.Entries = append(snap.Entries, snapshotEntry(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func snapshotEntry(e models.Entry) models.SnapshotEntry {
	return models.SnapshotEntry{
		ID:        e.ID,
		Title:     e.Title,
		URL:       e.URL,
		Username:  e.Username,
		Tags:      e.Tags,
		Notes:     e.Notes,
		PwdIV:     base64.StdEncoding.EncodeToString(e.PwdIV),
		PwdCT:     base64.StdEncoding.EncodeToString(e.PwdCT),
		Favorite:  e.Favorite,
		Archived:  e.Archived,
		CreatedAt: timex.FormatStamp(e.CreatedAt),
		UpdatedAt: timex.FormatStamp(e.UpdatedAt),
	}
}

// DefaultExportName is the file name used when the destination names none.
func DefaultExportName(t time.Time) string {
	return "pwvault-export-" + t.UTC().Format("20060102T150405Z") + ".json"
}

func (s *exportService) Export(ctx context.Context, dest string) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	sink, name, err := openSink(ctx, dest, DefaultExportName(s.now()), exporter.Options{Dir: s.opts.Dir, S3: s.opts.S3})
	if err != nil {
		return "", fmt.Errorf("open export destination: %w", err)
	}

	loc, err := sink.Write(ctx, name, data)
	if err != nil {
		s.log.Error(ctx, "export failed", "error", err)
		return "", fmt.Errorf("write export: %w", err)
	}

	s.log.Info(ctx, "vault exported", "location", loc, "entries", len(snap.Entries))
	return loc, nil
}
