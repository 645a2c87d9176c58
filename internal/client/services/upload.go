package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Identity is the read side of the wallet session used by the upload and
// payment managers.
type Identity interface {
	Address() (string, bool)
}

// StorageNetwork stores payloads and reports on stored content.
type StorageNetwork interface {
	Store(ctx context.Context, owner string, payload []byte, meta models.UploadMetadata) (string, error)
	Status(ctx context.Context, cid string) (models.ContentStatus, error)
}

// UploadState is a point-in-time copy of the upload session. CID is set
// only when the last upload succeeded and none is running.
type UploadState struct {
	Initialized bool
	InProgress  bool
	CID         string
	Error       string
}

// UploadManager runs at most one upload at a time.
type UploadManager struct {
	identity Identity
	storage  StorageNetwork
	log      logging.Logger
	now      func() time.Time

	busy atomic.Bool

	mu         sync.RWMutex
	inProgress bool
	cid        string
	lastErr    string
}

func NewUploadManager(identity Identity, storage StorageNetwork, log logging.Logger) *UploadManager {
	return &UploadManager{
		identity: identity,
		storage:  storage,
		log:      log.With("module", "upload"),
		now:      time.Now,
	}
}

// IsInitialized reports whether uploads are possible, i.e. whether a wallet
// is connected.
func (m *UploadManager) IsInitialized() bool {
	_, ok := m.identity.Address()
	return ok
}

func (m *UploadManager) State() UploadState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return UploadState{
		Initialized: m.IsInitialized(),
		InProgress:  m.inProgress,
		CID:         m.cid,
		Error:       m.lastErr,
	}
}

// UploadFile reads payload to the end and hands it to the storage network
// together with meta. It returns the content identifier of the stored data.
// A second call while one is running fails with common.ErrBusy.
func (m *UploadManager) UploadFile(ctx context.Context, payload io.Reader, meta models.UploadMetadata) (cid string, err error) {
	if !m.busy.CompareAndSwap(false, true) {
		return "", common.ErrBusy
	}
	defer m.busy.Store(false)

	owner, ok := m.identity.Address()
	if !ok {
		m.finish("", common.ErrNotInitialized)
		return "", common.ErrNotInitialized
	}

	m.mu.Lock()
	m.inProgress = true
	m.cid = ""
	m.lastErr = ""
	m.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			m.finish("", fmt.Errorf("upload aborted: %v", p))
			panic(p)
		}
		m.finish(cid, err)
	}()

	cid, err = m.upload(ctx, owner, payload, meta)
	if err != nil {
		m.log.Error(ctx, "upload failed", "owner", owner, "error", err)
		return "", err
	}

	m.log.Info(ctx, "upload finished", "owner", owner, "cid", cid)
	return cid, nil
}

func (m *UploadManager) upload(ctx context.Context, owner string, payload io.Reader, meta models.UploadMetadata) (string, error) {
	data, err := io.ReadAll(payload)
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}

	if meta.FileSize == 0 {
		meta.FileSize = int64(len(data))
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = m.now().UTC()
	}
	if err := meta.Validate(); err != nil {
		return "", err
	}

	cid, err := m.storage.Store(ctx, owner, data, meta)
	if err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	return cid, nil
}

func (m *UploadManager) finish(cid string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inProgress = false
	if err != nil {
		m.cid = ""
		m.lastErr = err.Error()
		return
	}
	m.cid = cid
	m.lastErr = ""
}

// FileStatus asks the storage network about previously stored content.
func (m *UploadManager) FileStatus(ctx context.Context, cid string) (models.ContentStatus, error) {
	if !m.IsInitialized() {
		return models.ContentStatus{}, common.ErrNotInitialized
	}
	st, err := m.storage.Status(ctx, cid)
	if err != nil {
		return models.ContentStatus{}, fmt.Errorf("status of %s: %w", cid, err)
	}
	return st, nil
}
