// Package datasets persists marketplace listings.
package datasets

import (
	"context"

	"github.com/dmitrijs2005/datamarket/internal/models"
)

type Repository interface {
	// Create inserts a listing. A listing for an already listed CID yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, d *models.Dataset) error

	// Get and GetByCID return common.ErrorNotFound for unknown keys.
	Get(ctx context.Context, id string) (*models.Dataset, error)
	GetByCID(ctx context.Context, cid string) (*models.Dataset, error)

	// List returns listings in category, or all listings when category is
	// empty, newest first.
	List(ctx context.Context, category string) ([]*models.Dataset, error)
	ListBySeller(ctx context.Context, seller string) ([]*models.Dataset, error)

	IncrementViews(ctx context.Context, id string) error

	// AddSales adjusts the sales counter by delta, never below zero.
	AddSales(ctx context.Context, id string, delta int64) error
}
