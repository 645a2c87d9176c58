// Package transfers persists payment transfers for the payment network.
package transfers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/models"
)

type Repository interface {
	// Create inserts a new active transfer. A duplicate id yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, t *models.Transfer) error

	// Get returns the transfer or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Transfer, error)

	// GetForUpdate is Get that also locks the row for the enclosing
	// transaction.
	GetForUpdate(ctx context.Context, id string) (*models.Transfer, error)

	// Finish moves an active transfer to status at the given time. A
	// transfer that is no longer active yields common.ErrInvalidTransition.
	Finish(ctx context.Context, id string, status models.TransferStatus, at time.Time) error

	ListActiveByPayer(ctx context.Context, payer string) ([]*models.Transfer, error)

	// ListByParty returns every transfer where identity is payer or
	// recipient, newest first.
	ListByParty(ctx context.Context, identity string) ([]*models.Transfer, error)

	ListByRecipient(ctx context.Context, recipient string) ([]*models.Transfer, error)

	// ListActiveStartedBefore returns active transfers with StartTime < cutoff.
	ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]*models.Transfer, error)
}
