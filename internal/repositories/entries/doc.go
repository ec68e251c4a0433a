// Package entries provides the persistence layer for vault entries.
//
// # Overview
//
// The package defines a Repository interface for CRUD and query operations on
// Entry models (see internal/models). A SQLite-backed implementation
// (SQLiteRepository) persists data using a dbx.DBTX (either *sql.DB or *sql.Tx).
//
// # Data Model
//
// Each row stores plaintext metadata, the sealed password as base64 text
// (pwd_iv, pwd_ct), the favorite/archived flags and fixed-width UTC
// timestamps. The password pair is always written by a single statement.
// updated_at never moves backwards: writes keep the larger of the stored and
// supplied values.
//
// Listings never select the password columns.
//
// Typical Usage
//
//	repo := entries.NewSQLiteRepository(db)
//	id, _ := repo.Insert(ctx, entry)
//	list, _ := repo.List(ctx, false)
//	one, _ := repo.GetByID(ctx, id)
//	_ = repo.UpdateSecret(ctx, id, iv, ct, time.Now())
//	_ = repo.DeleteByID(ctx, id)
package entries
