package entries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pwvault/internal/models"
)

// Repository describes CRUD and query operations for Entry objects.
// Methods addressing a single id return common.ErrNotFound when it is absent.
type Repository interface {
	// Insert stores a new entry and returns its assigned id.
	Insert(ctx context.Context, entry *models.Entry) (int64, error)

	// GetByID returns the full entry, secret included.
	GetByID(ctx context.Context, id int64) (*models.Entry, error)

	// List returns entries without secrets, newest update first, ties by id.
	List(ctx context.Context, includeArchived bool) ([]models.Entry, error)

	// ListAll returns every entry with its secret in ascending id order.
	ListAll(ctx context.Context) ([]models.Entry, error)

	// Update rewrites the plaintext fields and favorite flag.
	Update(ctx context.Context, entry *models.Entry) error

	// UpdateSecret replaces the (iv, sealed) pair in one statement.
	UpdateSecret(ctx context.Context, id int64, iv, sealed []byte, updatedAt time.Time) error

	SetArchived(ctx context.Context, id int64, archived bool, updatedAt time.Time) error
	SetFavorite(ctx context.Context, id int64, favorite bool, updatedAt time.Time) error

	// DeleteByID removes the row permanently.
	DeleteByID(ctx context.Context, id int64) error

	// Count returns the number of entries and how many of them are archived.
	Count(ctx context.Context) (total, archived int, err error)
}
