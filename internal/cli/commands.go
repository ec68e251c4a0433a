package cli

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dmitrijs2005/pwvault/internal/common"
	"github.com/dmitrijs2005/pwvault/internal/models"
	"github.com/dmitrijs2005/pwvault/internal/timex"
)

// writeClipboard is a test seam for clipboard.WriteAll.
var writeClipboard = clipboard.WriteAll

// clearMarker entered at an edit prompt empties the field.
const clearMarker = "-"

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// readNewPassword asks for a secret twice.
func (a *App) readNewPassword(prompt string) ([]byte, error) {
	pw, err := GetPassword(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	confirm, err := GetPassword(a.reader, "Repeat "+strings.ToLower(prompt), a.out)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if subtle.ConstantTimeCompare(pw, confirm) != 1 {
		common.WipeByteArray(pw)
		return nil, common.ErrPasswordMismatch
	}
	return pw, nil
}

// Add collects the fields of a new entry and stores it.
func (a *App) Add(ctx context.Context) error {
	var fields models.EntryFields
	prompts := []struct {
		label string
		dst   *string
	}{
		{"Title", &fields.Title},
		{"URL", &fields.URL},
		{"Username", &fields.Username},
		{"Tags", &fields.Tags},
		{"Notes", &fields.Notes},
	}
	for _, p := range prompts {
		v, err := GetSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return a.fail(ctx, err)
		}
		*p.dst = v
	}

	pw, err := a.readNewPassword("Password")
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(pw)

	id, err := a.entryService.Add(ctx, fields, pw, a.key)
	if err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintf(a.out, "Added entry %d.\n", id)
	return nil
}

func (a *App) printSummaries(list []models.EntrySummary) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No entries.")
		return
	}
	for _, s := range list {
		fmt.Fprintln(a.out, s.String())
	}
}

func (a *App) List(ctx context.Context, includeArchived bool) error {
	list, err := a.entryService.List(ctx, includeArchived)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.printSummaries(list)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	list, err := a.entryService.Search(ctx, query)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.printSummaries(list)
	return nil
}

// View prints every field except the password.
func (a *App) View(ctx context.Context, id int64) error {
	d, err := a.entryService.View(ctx, id)
	if err != nil {
		return a.fail(ctx, err)
	}

	fmt.Fprintf(a.out, "ID:       %d\n", d.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", d.Title)
	fmt.Fprintf(a.out, "URL:      %s\n", d.URL)
	fmt.Fprintf(a.out, "Username: %s\n", d.Username)
	fmt.Fprintf(a.out, "Tags:     %s\n", d.Tags)
	fmt.Fprintf(a.out, "Notes:    %s\n", d.Notes)
	fmt.Fprintf(a.out, "Favorite: %t\n", d.Favorite)
	fmt.Fprintf(a.out, "Archived: %t\n", d.Archived)
	fmt.Fprintf(a.out, "Created:  %s\n", timex.FormatStamp(d.CreatedAt))
	fmt.Fprintf(a.out, "Updated:  %s\n", timex.FormatStamp(d.UpdatedAt))
	return nil
}

func (a *App) Reveal(ctx context.Context, id int64) error {
	pw, err := a.entryService.Reveal(ctx, id, a.key)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(pw)

	fmt.Fprintf(a.out, "Password: %s\n", pw)
	return nil
}

// Copy puts the password of an entry on the system clipboard.
func (a *App) Copy(ctx context.Context, id int64) error {
	pw, err := a.entryService.Reveal(ctx, id, a.key)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(pw)

	if err := writeClipboard(string(pw)); err != nil {
		return a.fail(ctx, fmt.Errorf("clipboard: %w", err))
	}
	fmt.Fprintf(a.out, "Password of entry %d copied to clipboard.\n", id)
	return nil
}

// Edit walks the plaintext fields. Enter keeps a value, "-" clears it.
func (a *App) Edit(ctx context.Context, id int64) error {
	d, err := a.entryService.View(ctx, id)
	if err != nil {
		return a.fail(ctx, err)
	}

	var patch models.EntryPatch
	fields := []struct {
		label   string
		current string
		dst     **string
	}{
		{"Title", d.Title, &patch.Title},
		{"URL", d.URL, &patch.URL},
		{"Username", d.Username, &patch.Username},
		{"Tags", d.Tags, &patch.Tags},
		{"Notes", d.Notes, &patch.Notes},
	}
	for _, f := range fields {
		v, err := GetSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, f.current), a.out)
		if err != nil {
			return a.fail(ctx, err)
		}
		switch v {
		case "":
		case clearMarker:
			empty := ""
			*f.dst = &empty
		default:
			*f.dst = &v
		}
	}

	if patch.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}
	if err := a.entryService.Update(ctx, id, patch); err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintf(a.out, "Entry %d updated.\n", id)
	return nil
}

// ChangePassword replaces the stored password of an entry.
func (a *App) ChangePassword(ctx context.Context, id int64) error {
	if _, err := a.entryService.View(ctx, id); err != nil {
		return a.fail(ctx, err)
	}

	pw, err := a.readNewPassword("New password")
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(pw)

	if err := a.entryService.ChangeSecret(ctx, id, pw, a.key); err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintf(a.out, "Password of entry %d changed.\n", id)
	return nil
}

func (a *App) SetArchived(ctx context.Context, id int64, archived bool) error {
	if err := a.entryService.SetArchived(ctx, id, archived); err != nil {
		return a.fail(ctx, err)
	}
	if archived {
		fmt.Fprintf(a.out, "Entry %d archived.\n", id)
	} else {
		fmt.Fprintf(a.out, "Entry %d restored.\n", id)
	}
	return nil
}

func (a *App) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	if err := a.entryService.SetFavorite(ctx, id, favorite); err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintf(a.out, "Entry %d favorite: %t.\n", id, favorite)
	return nil
}

// Delete removes an entry after an explicit confirmation.
func (a *App) Delete(ctx context.Context, id int64) error {
	d, err := a.entryService.View(ctx, id)
	if err != nil {
		return a.fail(ctx, err)
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete entry %d (%s) permanently?", id, d.Title), a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.entryService.Delete(ctx, id); err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintf(a.out, "Entry %d deleted.\n", id)
	return nil
}

func (a *App) Export(ctx context.Context, dest string) error {
	loc, err := a.exportService.Export(ctx, dest)
	if err != nil {
		return a.fail(ctx, err)
	}
	fmt.Fprintf(a.out, "Exported to %s\n", loc)
	return nil
}

// Status prints vault metadata and entry counts.
func (a *App) Status(ctx context.Context) error {
	info, err := a.unlockService.Info(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	total, archived, err := a.entryService.Count(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}

	fmt.Fprintf(a.out, "Database: %s\n", a.config.DatabasePath)
	fmt.Fprintf(a.out, "Vault ID: %s\n", info.VaultID)
	fmt.Fprintf(a.out, "Created:  %s\n", info.CreatedAt)
	fmt.Fprintf(a.out, "Entries:  %d (%d archived)\n", total, archived)
	return nil
}
