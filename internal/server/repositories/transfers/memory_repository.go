package transfers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// MemoryRepository keeps transfers in a map. Returned values are copies.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Transfer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Transfer)}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.items[t.ID] = clone(*t)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := clone(t)
	return &c, nil
}

// GetForUpdate is Get; callers serialize writers above this layer.
func (r *MemoryRepository) GetForUpdate(ctx context.Context, id string) (*models.Transfer, error) {
	return r.Get(ctx, id)
}

func (r *MemoryRepository) Finish(ctx context.Context, id string, status models.TransferStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	if !t.Finish(status, at) {
		return common.ErrInvalidTransition
	}
	r.items[id] = t
	return nil
}

func (r *MemoryRepository) ListActiveByPayer(ctx context.Context, payer string) ([]*models.Transfer, error) {
	return r.filter(func(t *models.Transfer) bool { return t.Payer == payer && t.Active() }, newestFirst), nil
}

func (r *MemoryRepository) ListByParty(ctx context.Context, identity string) ([]*models.Transfer, error) {
	return r.filter(func(t *models.Transfer) bool { return t.Payer == identity || t.Recipient == identity }, newestFirst), nil
}

func (r *MemoryRepository) ListByRecipient(ctx context.Context, recipient string) ([]*models.Transfer, error) {
	return r.filter(func(t *models.Transfer) bool { return t.Recipient == recipient }, newestFirst), nil
}

func (r *MemoryRepository) ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]*models.Transfer, error) {
	return r.filter(func(t *models.Transfer) bool { return t.Active() && t.StartTime.Before(cutoff) }, oldestFirst), nil
}

func (r *MemoryRepository) filter(keep func(*models.Transfer) bool, less func(a, b *models.Transfer) bool) []*models.Transfer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Transfer
	for _, t := range r.items {
		c := clone(t)
		if keep(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestFirst(a, b *models.Transfer) bool {
	if a.StartTime.Equal(b.StartTime) {
		return a.ID < b.ID
	}
	return a.StartTime.After(b.StartTime)
}

func oldestFirst(a, b *models.Transfer) bool {
	if a.StartTime.Equal(b.StartTime) {
		return a.ID < b.ID
	}
	return a.StartTime.Before(b.StartTime)
}

func clone(t models.Transfer) models.Transfer {
	if t.EndTime != nil {
		e := *t.EndTime
		t.EndTime = &e
	}
	return t
}
