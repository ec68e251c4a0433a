package entries

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pwvault/internal/common"
	"github.com/dmitrijs2005/pwvault/internal/dbx"
	"github.com/dmitrijs2005/pwvault/internal/models"
	"github.com/dmitrijs2005/pwvault/internal/timex"
)

const summaryColumns = `id, title, url, username, tags, favorite, archived, updated_at`

const fullColumns = `id, title, url, username, tags, notes, pwd_iv, pwd_ct,
	favorite, archived, created_at, updated_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Entry) (int64, error) {
	query := `INSERT INTO entries (title, url, username, tags, notes, pwd_iv, pwd_ct,
			favorite, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.URL, e.Username, e.Tags, e.Notes, encode(e.PwdIV), encode(e.PwdCT),
		e.Favorite, e.Archived, timex.FormatStamp(e.CreatedAt), timex.FormatStamp(e.UpdatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+fullColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanFull(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context, includeArchived bool) ([]models.Entry, error) {
	query := `SELECT ` + summaryColumns + ` FROM entries`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY updated_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]models.Entry, 0)
	for rows.Next() {
		var (
			e         models.Entry
			updatedAt string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.URL, &e.Username, &e.Tags,
			&e.Favorite, &e.Archived, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		if e.UpdatedAt, err = timex.ParseStamp(updatedAt); err != nil {
			return nil, fmt.Errorf("entry %d: bad updated_at: %w", e.ID, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+fullColumns+` FROM entries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scanFull(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e *models.Entry) error {
	query := `UPDATE entries SET title = ?, url = ?, username = ?, tags = ?, notes = ?,
			favorite = ?, updated_at = MAX(updated_at, ?)
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.URL, e.Username, e.Tags, e.Notes, e.Favorite, timex.FormatStamp(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", e.ID, err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *SQLiteRepository) UpdateSecret(ctx context.Context, id int64, iv, sealed []byte, updatedAt time.Time) error {
	query := `UPDATE entries SET pwd_iv = ?, pwd_ct = ?, updated_at = MAX(updated_at, ?) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, encode(iv), encode(sealed), timex.FormatStamp(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update secret of entry %d: %w", id, err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *SQLiteRepository) SetArchived(ctx context.Context, id int64, archived bool, updatedAt time.Time) error {
	return r.setFlag(ctx, "archived", id, archived, updatedAt)
}

func (r *SQLiteRepository) SetFavorite(ctx context.Context, id int64, favorite bool, updatedAt time.Time) error {
	return r.setFlag(ctx, "favorite", id, favorite, updatedAt)
}

// setFlag updates one boolean column; column is always a package constant.
func (r *SQLiteRepository) setFlag(ctx context.Context, column string, id int64, value bool, updatedAt time.Time) error {
	query := `UPDATE entries SET ` + column + ` = ?, updated_at = MAX(updated_at, ?) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, value, timex.FormatStamp(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to set %s on entry %d: %w", column, id, err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *SQLiteRepository) Count(ctx context.Context) (total, archived int, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(archived), 0) FROM entries`)
	if err := row.Scan(&total, &archived); err != nil {
		return 0, 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return total, archived, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFull(s scanner) (*models.Entry, error) {
	var (
		e                    models.Entry
		iv, ct               string
		createdAt, updatedAt string
	)
	if err := s.Scan(&e.ID, &e.Title, &e.URL, &e.Username, &e.Tags, &e.Notes, &iv, &ct,
		&e.Favorite, &e.Archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if e.PwdIV, err = base64.StdEncoding.DecodeString(iv); err != nil {
		return nil, fmt.Errorf("entry %d: bad pwd_iv: %w", e.ID, err)
	}
	if e.PwdCT, err = base64.StdEncoding.DecodeString(ct); err != nil {
		return nil, fmt.Errorf("entry %d: bad pwd_ct: %w", e.ID, err)
	}
	if e.CreatedAt, err = timex.ParseStamp(createdAt); err != nil {
		return nil, fmt.Errorf("entry %d: bad created_at: %w", e.ID, err)
	}
	if e.UpdatedAt, err = timex.ParseStamp(updatedAt); err != nil {
		return nil, fmt.Errorf("entry %d: bad updated_at: %w", e.ID, err)
	}
	return &e, nil
}
