// Package models defines vault entry types and the export snapshot.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Entry is a stored credential. Only the password is confidential: it is
// kept as an AES-GCM (iv, sealed) pair that is always written as one unit.
type Entry struct {
	// ID is assigned by storage at creation and never changes.
	ID int64

	Title    string
	URL      string
	Username string
	Tags     string
	Notes    string

	// PwdIV is the 12-byte nonce used to seal the password.
	PwdIV []byte
	// PwdCT is the sealed password (ciphertext with tag).
	PwdCT []byte

	Favorite bool
	Archived bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntryFields are the plaintext fields supplied when creating an entry.
type EntryFields struct {
	Title    string
	URL      string
	Username string
	Tags     string
	Notes    string
	Favorite bool
}

// EntryPatch describes a partial update. A nil field keeps its current value.
type EntryPatch struct {
	Title    *string
	URL      *string
	Username *string
	Tags     *string
	Notes    *string
	Favorite *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Username == nil &&
		p.Tags == nil && p.Notes == nil && p.Favorite == nil
}

// Apply copies every non-nil patch field into e.
func (p EntryPatch) Apply(e *Entry) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.URL != nil {
		e.URL = *p.URL
	}
	if p.Username != nil {
		e.Username = *p.Username
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Favorite != nil {
		e.Favorite = *p.Favorite
	}
}

// EntrySummary is the listing view of an entry. It never carries the secret.
type EntrySummary struct {
	ID        int64
	Title     string
	URL       string
	Username  string
	Tags      string
	Favorite  bool
	Archived  bool
	UpdatedAt time.Time
}

func (s EntrySummary) String() string {
	var flags []string
	if s.Favorite {
		flags = append(flags, "*")
	}
	if s.Archived {
		flags = append(flags, "archived")
	}
	line := fmt.Sprintf("%4d  %-24s  %-20s  %s", s.ID, s.Title, s.Username, s.URL)
	if len(flags) > 0 {
		line += "  [" + strings.Join(flags, ",") + "]"
	}
	return line
}

// EntryDetail is the full plaintext view of an entry, without the secret.
type EntryDetail struct {
	ID        int64
	Title     string
	URL       string
	Username  string
	Tags      string
	Notes     string
	Favorite  bool
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary returns the listing view of e.
func (e Entry) Summary() EntrySummary {
	return EntrySummary{
		ID:        e.ID,
		Title:     e.Title,
		URL:       e.URL,
		Username:  e.Username,
		Tags:      e.Tags,
		Favorite:  e.Favorite,
		Archived:  e.Archived,
		UpdatedAt: e.UpdatedAt,
	}
}

// Detail returns the plaintext view of e.
func (e Entry) Detail() EntryDetail {
	return EntryDetail{
		ID:        e.ID,
		Title:     e.Title,
		URL:       e.URL,
		Username:  e.Username,
		Tags:      e.Tags,
		Notes:     e.Notes,
		Favorite:  e.Favorite,
		Archived:  e.Archived,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// Matches reports whether the lower-cased query is a substring of the title,
// URL, username or tags, compared case-insensitively.
func (s EntrySummary) Matches(lowerQuery string) bool {
	for _, field := range []string{s.Title, s.URL, s.Username, s.Tags} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}
