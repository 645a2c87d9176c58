package datasets

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Dataset
	byCID map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]models.Dataset),
		byCID: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, d *models.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[d.ID]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.byCID[d.CID]; ok {
		return common.ErrorAlreadyExists
	}
	r.items[d.ID] = *d
	r.byCID[d.CID] = d.ID
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) GetByCID(ctx context.Context, cid string) (*models.Dataset, error) {
	r.mu.RLock()
	id, ok := r.byCID[cid]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.Get(ctx, id)
}

func (r *MemoryRepository) List(ctx context.Context, category string) ([]*models.Dataset, error) {
	return r.filter(func(d *models.Dataset) bool {
		return category == "" || string(d.Category) == category
	}), nil
}

func (r *MemoryRepository) ListBySeller(ctx context.Context, seller string) ([]*models.Dataset, error) {
	return r.filter(func(d *models.Dataset) bool { return d.Seller == seller }), nil
}

func (r *MemoryRepository) IncrementViews(ctx context.Context, id string) error {
	return r.update(id, func(d *models.Dataset) { d.Views++ })
}

func (r *MemoryRepository) AddSales(ctx context.Context, id string, delta int64) error {
	return r.update(id, func(d *models.Dataset) {
		d.Sales = max(d.Sales+delta, 0)
	})
}

func (r *MemoryRepository) update(id string, fn func(*models.Dataset)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&d)
	r.items[id] = d
	return nil
}

func (r *MemoryRepository) filter(keep func(*models.Dataset) bool) []*models.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Dataset
	for _, d := range r.items {
		if keep(&d) {
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}
