package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEntryPatch_ApplyKeepsUnsetFields(t *testing.T) {
	e := Entry{Title: "GitHub", URL: "https://github.com", Username: "dan", Tags: "dev", Notes: "n", Favorite: true}

	p := EntryPatch{Title: ptr("NewTitle")}
	require.False(t, p.IsEmpty())
	p.Apply(&e)

	assert.Equal(t, "NewTitle", e.Title)
	assert.Equal(t, "https://github.com", e.URL)
	assert.Equal(t, "dan", e.Username)
	assert.Equal(t, "dev", e.Tags)
	assert.Equal(t, "n", e.Notes)
	assert.True(t, e.Favorite)
}

func TestEntryPatch_ApplyAllFields(t *testing.T) {
	var e Entry
	EntryPatch{
		Title: ptr("t"), URL: ptr("u"), Username: ptr("n"),
		Tags: ptr("g"), Notes: ptr("x"), Favorite: ptr(true),
	}.Apply(&e)

	assert.Equal(t, Entry{Title: "t", URL: "u", Username: "n", Tags: "g", Notes: "x", Favorite: true}, e)
}

func TestEntryPatch_EmptyStringIsAChange(t *testing.T) {
	e := Entry{Notes: "old"}
	p := EntryPatch{Notes: ptr("")}
	p.Apply(&e)
	assert.Equal(t, "", e.Notes)
	assert.True(t, EntryPatch{}.IsEmpty())
}

func TestEntry_SummaryAndDetailOmitSecret(t *testing.T) {
	now := time.Now().UTC()
	e := Entry{ID: 7, Title: "t", Notes: "n", PwdIV: []byte{1}, PwdCT: []byte{2}, Archived: true, CreatedAt: now, UpdatedAt: now}

	s := e.Summary()
	assert.Equal(t, int64(7), s.ID)
	assert.True(t, s.Archived)

	d := e.Detail()
	assert.Equal(t, "n", d.Notes)
	assert.Equal(t, now, d.CreatedAt)
}

func TestEntrySummary_Matches(t *testing.T) {
	s := EntrySummary{Title: "GitHub", URL: "https://github.com", Username: "Dan", Tags: "Work,Dev"}

	for _, q := range []string{"github", "hub", "dan", "dev", "https://", "work,"} {
		assert.True(t, s.Matches(q), q)
	}
	assert.False(t, s.Matches("gitlab"))
}

func TestEntrySummary_MatchesUnicode(t *testing.T) {
	s := EntrySummary{Title: "ПОЧТА Ümlaut"}
	assert.True(t, s.Matches("почта"))
	assert.True(t, s.Matches("ümlaut"))
}

func TestEntrySummary_String(t *testing.T) {
	s := EntrySummary{ID: 3, Title: "GitHub", Username: "dan", Favorite: true, Archived: true}
	out := s.String()
	assert.Contains(t, out, "GitHub")
	assert.Contains(t, out, "[*,archived]")
}
