// Package repomanager vends the ledger repositories for a backend and runs
// multi-step writes atomically.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/datamarket/internal/dbx"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/contents"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/datasets"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/transfers"
)

// RepositoryManager binds repositories to a connection. Pass DB() for
// single statements and the tx handed to WithTx inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	DB() dbx.DBTX
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	// WithReadTx runs fn against a consistent read-only snapshot.
	WithReadTx(ctx context.Context, fn dbx.TxFunc) error
	Close() error

	Transfers(db dbx.DBTX) transfers.Repository
	Datasets(db dbx.DBTX) datasets.Repository
	Contents(db dbx.DBTX) contents.Repository
}
