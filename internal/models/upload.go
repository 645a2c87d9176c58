package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/filecoin-project/go-state-types/abi"
)

// Category classifies a dataset listing.
type Category string

const (
	CategoryMachineLearning Category = "machine-learning"
	CategoryAnalytics       Category = "analytics"
	CategoryResearch        Category = "research"
	CategoryFinance         Category = "finance"
	CategoryHealthcare      Category = "healthcare"
	CategoryOther           Category = "other"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryMachineLearning,
	CategoryAnalytics,
	CategoryResearch,
	CategoryFinance,
	CategoryHealthcare,
	CategoryOther,
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", common.ErrInvalidMetadata, s)
}

// UploadMetadata describes a dataset handed to the storage network.
type UploadMetadata struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Price       abi.TokenAmount `json:"price"`
	FileName    string          `json:"fileName"`
	FileSize    int64           `json:"fileSize"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (m UploadMetadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidMetadata)
	}
	if _, err := ParseCategory(string(m.Category)); err != nil {
		return err
	}
	if m.Price.Int == nil || m.Price.Sign() < 0 {
		return fmt.Errorf("%w: price must not be negative", common.ErrInvalidMetadata)
	}
	if m.FileSize < 0 {
		return fmt.Errorf("%w: negative file size", common.ErrInvalidMetadata)
	}
	return nil
}

// StoreRequest is the storage network's input: raw payload plus metadata.
type StoreRequest struct {
	Owner    string         `json:"owner"`
	Payload  []byte         `json:"payload"`
	Metadata UploadMetadata `json:"metadata"`
}

// ContentState is the state of stored content.
type ContentState string

const (
	ContentStored  ContentState = "stored"
	ContentMissing ContentState = "missing"
)

// ContentStatus describes a stored payload.
type ContentStatus struct {
	CID      string         `json:"cid"`
	Owner    string         `json:"owner"`
	Size     int64          `json:"size"`
	State    ContentState   `json:"state"`
	StoredAt time.Time      `json:"storedAt"`
	Metadata UploadMetadata `json:"metadata"`
}

// Verification is the outcome of re-hashing stored content.
type Verification struct {
	CID        string    `json:"cid"`
	Valid      bool      `json:"valid"`
	Size       int64     `json:"size"`
	VerifiedAt time.Time `json:"verifiedAt"`
}
