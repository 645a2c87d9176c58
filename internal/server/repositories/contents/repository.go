// Package contents records metadata of payloads held by the storage network.
package contents

import (
	"context"

	"github.com/dmitrijs2005/datamarket/internal/server/models"
)

type Repository interface {
	// Create records stored content. A second record for the same CID
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Content) error

	// Get returns the record for cid or common.ErrorNotFound.
	Get(ctx context.Context, cid string) (*models.Content, error)
}
