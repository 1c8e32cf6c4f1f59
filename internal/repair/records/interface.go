// Package records provides access to the remote sync_records store the
// repair tooling operates on. Each call is an independent statement; there is
// no cross-statement transaction, which is why the repair runner backs up
// before mutating.
package records

import (
	"context"

	"github.com/mirubato/mirubato/internal/models"
)

// Repository describes the operations the repair runner needs against the
// remote store: read everything for one user, update one row, delete one row.
type Repository interface {
	// ListByUser returns every sync record owned by userID, tombstones
	// included, ordered by id.
	ListByUser(ctx context.Context, userID string) ([]*models.SyncRecord, error)

	// Update replaces the mutable columns of one record by id.
	Update(ctx context.Context, rec *models.SyncRecord) error

	// Delete removes one record by id.
	Delete(ctx context.Context, id string) error
}
