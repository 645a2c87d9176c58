package uploads

import (
	"context"

	"github.com/dmitrijs2005/datamarket/internal/client/models"
)

// Repository persists the local upload ledger.
type Repository interface {
	// Save inserts the record or replaces the one with the same CID.
	Save(ctx context.Context, r *models.UploadRecord) error

	// SetDatasetID links a stored upload to its catalog listing.
	SetDatasetID(ctx context.Context, cid, datasetID string) error

	// Get returns the record for cid or common.ErrorNotFound.
	Get(ctx context.Context, cid string) (*models.UploadRecord, error)

	// ListByOwner returns owner's uploads, newest first.
	ListByOwner(ctx context.Context, owner string) ([]*models.UploadRecord, error)
}
