package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/datamarket/internal/dbx"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/contents"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/datasets"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/transfers"
)

// MemoryRepositoryManager keeps the ledger in process memory. WithTx
// serializes writers; there is no rollback.
type MemoryRepositoryManager struct {
	txMu sync.Mutex

	transfers *transfers.MemoryRepository
	datasets  *datasets.MemoryRepository
	contents  *contents.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		transfers: transfers.NewMemoryRepository(),
		datasets:  datasets.NewMemoryRepository(),
		contents:  contents.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

// DB returns nil; memory repositories ignore their DBTX argument.
func (m *MemoryRepositoryManager) DB() dbx.DBTX { return nil }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) WithReadTx(ctx context.Context, fn dbx.TxFunc) error {
	return m.WithTx(ctx, fn)
}

func (m *MemoryRepositoryManager) Close() error { return nil }

func (m *MemoryRepositoryManager) Transfers(dbx.DBTX) transfers.Repository { return m.transfers }
func (m *MemoryRepositoryManager) Datasets(dbx.DBTX) datasets.Repository   { return m.datasets }
func (m *MemoryRepositoryManager) Contents(dbx.DBTX) contents.Repository   { return m.contents }
