// Package models defines server-side records that are not part of the
// public API.
package models

import (
	"time"

	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Content is a stored payload as recorded by the storage network. The blob
// itself lives in the blob store under StorageKey.
type Content struct {
	CID        string
	Owner      string
	Size       int64
	StorageKey string
	StoredAt   time.Time
	Metadata   models.UploadMetadata
}

// Status converts the record into the API snapshot.
func (c *Content) Status() models.ContentStatus {
	return models.ContentStatus{
		CID:      c.CID,
		Owner:    c.Owner,
		Size:     c.Size,
		State:    models.ContentStored,
		StoredAt: c.StoredAt,
		Metadata: c.Metadata,
	}
}
