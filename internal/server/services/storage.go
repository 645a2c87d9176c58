package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
	"github.com/dmitrijs2005/datamarket/internal/server/blobstore"
	"github.com/dmitrijs2005/datamarket/internal/server/metrics"
	sm "github.com/dmitrijs2005/datamarket/internal/server/models"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/repomanager"
)

// StorageService is the storage network: it content-addresses payloads,
// keeps them in the blob store and records their metadata.
type StorageService struct {
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	metrics     metrics.Recorder
	logger      logging.Logger
	now         func() time.Time
}

func NewStorageService(m repomanager.RepositoryManager, blobs blobstore.Store, rec metrics.Recorder, l logging.Logger) *StorageService {
	return &StorageService{
		repomanager: m,
		blobs:       blobs,
		metrics:     rec,
		logger:      l.With("module", "storage"),
		now:         time.Now,
	}
}

// Store saves req.Payload and returns its CID. Storing the same bytes again
// returns the existing CID without rewriting the blob; the same bytes from a
// different owner are refused with ErrForbidden.
func (s *StorageService) Store(ctx context.Context, req models.StoreRequest) (string, error) {
	owner, err := models.CanonicalIdentity(req.Owner)
	if err != nil {
		return "", err
	}

	meta := req.Metadata
	meta.FileSize = int64(len(req.Payload))
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now().UTC()
	}
	if err := meta.Validate(); err != nil {
		return "", err
	}

	id, err := ContentID(req.Payload)
	if err != nil {
		return "", fmt.Errorf("hash payload: %w", err)
	}

	repo := s.repomanager.Contents(s.repomanager.DB())
	if c, err := repo.Get(ctx, id.String()); err == nil {
		return s.existing(c, owner)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	key := storageKey(id)
	if err := s.blobs.Put(ctx, key, req.Payload); err != nil {
		return "", err
	}

	err = repo.Create(ctx, &sm.Content{
		CID:        id.String(),
		Owner:      owner,
		Size:       meta.FileSize,
		StorageKey: key,
		StoredAt:   s.now().UTC(),
		Metadata:   meta,
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		c, gerr := repo.Get(ctx, id.String())
		if gerr != nil {
			return "", gerr
		}
		return s.existing(c, owner)
	}
	if err != nil {
		return "", err
	}

	s.metrics.RecordUpload(len(req.Payload))
	s.logger.Info(ctx, "content stored", "cid", id.String(), "owner", owner, "size", meta.FileSize)
	return id.String(), nil
}

// existing resolves a store of bytes that are already held. The same owner
// gets the CID back; anyone else is refused so the content keeps one owner.
func (s *StorageService) existing(c *sm.Content, owner string) (string, error) {
	if !models.SameAddress(c.Owner, owner) {
		return "", fmt.Errorf("%w: content %s is already stored by another account", common.ErrForbidden, c.CID)
	}
	return c.CID, nil
}

// Status reports what is known about cid. A record whose blob has vanished
// is reported as missing.
func (s *StorageService) Status(ctx context.Context, cidStr string) (models.ContentStatus, error) {
	if _, err := parseCID(cidStr); err != nil {
		return models.ContentStatus{}, err
	}

	c, err := s.repomanager.Contents(s.repomanager.DB()).Get(ctx, cidStr)
	if err != nil {
		return models.ContentStatus{}, err
	}

	st := c.Status()
	ok, err := s.blobs.Exists(ctx, c.StorageKey)
	if err != nil {
		return models.ContentStatus{}, err
	}
	if !ok {
		st.State = models.ContentMissing
	}
	return st, nil
}

// Verify re-reads the blob and checks that it still hashes to its CID.
func (s *StorageService) Verify(ctx context.Context, cidStr string) (models.Verification, error) {
	want, err := parseCID(cidStr)
	if err != nil {
		return models.Verification{}, err
	}

	c, err := s.repomanager.Contents(s.repomanager.DB()).Get(ctx, cidStr)
	if err != nil {
		return models.Verification{}, err
	}

	v := models.Verification{CID: cidStr, VerifiedAt: s.now().UTC()}

	data, err := s.blobs.Get(ctx, c.StorageKey)
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "blob missing", "cid", cidStr)
		return v, nil
	}
	if err != nil {
		return models.Verification{}, err
	}

	got, err := ContentID(data)
	if err != nil {
		return models.Verification{}, err
	}

	v.Size = int64(len(data))
	v.Valid = got.Equals(want)
	if !v.Valid {
		s.logger.Warn(ctx, "content mismatch", "cid", cidStr, "actual", got.String())
	}
	return v, nil
}
