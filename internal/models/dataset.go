package models

import (
	"time"

	"github.com/filecoin-project/go-state-types/abi"
)

// Dataset is a marketplace listing backed by stored content.
type Dataset struct {
	ID          string          `json:"id"`
	CID         string          `json:"cid"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Price       abi.TokenAmount `json:"price"`
	Seller      string          `json:"seller"`
	FileName    string          `json:"fileName"`
	FileSize    int64           `json:"fileSize"`
	UploadedAt  time.Time       `json:"uploadedAt"`
	Views       int64           `json:"views"`
	Sales       int64           `json:"sales"`
}

// PublishRequest creates a listing for already stored content.
type PublishRequest struct {
	CID    string `json:"cid"`
	Seller string `json:"seller"`
}

// SellerAnalytics aggregates a seller's listings and sales.
type SellerAnalytics struct {
	Seller            string          `json:"seller"`
	Datasets          int             `json:"datasets"`
	TotalViews        int64           `json:"totalViews"`
	TotalSales        int64           `json:"totalSales"`
	Revenue           abi.TokenAmount `json:"revenue"`
	ConversionRate    float64         `json:"conversionRate"`
	AverageOrderValue abi.TokenAmount `json:"averageOrderValue"`
	TopDatasets       []Dataset       `json:"topDatasets"`
}
