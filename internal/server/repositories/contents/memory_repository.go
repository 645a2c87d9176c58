package contents

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Content
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Content)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[c.CID]; ok {
		return common.ErrorAlreadyExists
	}
	r.items[c.CID] = *c
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, cid string) (*models.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[cid]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}
