package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/dbx"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/repomanager"
)

const (
	datasetIDPrefix = "ds_"
	topDatasets     = 3
)

// CatalogService manages the marketplace listings built on stored content.
type CatalogService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCatalogService(m repomanager.RepositoryManager, l logging.Logger) *CatalogService {
	return &CatalogService{
		repomanager: m,
		logger:      l.With("module", "catalog"),
	}
}

// Publish lists stored content. Only the content's owner may publish it,
// and publishing the same CID twice returns the existing listing.
func (s *CatalogService) Publish(ctx context.Context, req models.PublishRequest) (models.Dataset, error) {
	if _, err := parseCID(req.CID); err != nil {
		return models.Dataset{}, err
	}
	seller, err := models.CanonicalIdentity(req.Seller)
	if err != nil {
		return models.Dataset{}, err
	}

	var out models.Dataset
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.repomanager.Contents(tx).Get(ctx, req.CID)
		if err != nil {
			return fmt.Errorf("content %s: %w", req.CID, err)
		}
		if c.Owner != seller {
			return fmt.Errorf("%w: %s is owned by another account", common.ErrForbidden, req.CID)
		}

		repo := s.repomanager.Datasets(tx)
		if existing, err := repo.GetByCID(ctx, req.CID); err == nil {
			out = *existing
			return nil
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		uploadedAt := c.Metadata.CreatedAt
		if uploadedAt.IsZero() {
			uploadedAt = c.StoredAt
		}
		d := models.Dataset{
			ID:          datasetIDPrefix + uuid.NewString(),
			CID:         c.CID,
			Title:       c.Metadata.Title,
			Description: c.Metadata.Description,
			Category:    c.Metadata.Category,
			Price:       c.Metadata.Price,
			Seller:      seller,
			FileName:    c.Metadata.FileName,
			FileSize:    c.Size,
			UploadedAt:  uploadedAt.UTC(),
		}
		if err := repo.Create(ctx, &d); err != nil {
			return err
		}
		out = d
		s.logger.Info(ctx, "dataset published", "id", d.ID, "cid", d.CID, "seller", seller)
		return nil
	})
	if err != nil {
		return models.Dataset{}, err
	}
	return out, nil
}

// List returns the listings in category, or every listing for "" or "all".
func (s *CatalogService) List(ctx context.Context, category string) ([]models.Dataset, error) {
	filter := ""
	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, "all") {
		parsed, err := models.ParseCategory(c)
		if err != nil {
			return nil, err
		}
		filter = string(parsed)
	}

	list, err := s.repomanager.Datasets(s.repomanager.DB()).List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return derefDatasets(list), nil
}

// Get returns a listing and counts the lookup as a view.
func (s *CatalogService) Get(ctx context.Context, id string) (models.Dataset, error) {
	repo := s.repomanager.Datasets(s.repomanager.DB())
	if err := repo.IncrementViews(ctx, id); err != nil {
		return models.Dataset{}, err
	}
	d, err := repo.Get(ctx, id)
	if err != nil {
		return models.Dataset{}, err
	}
	return *d, nil
}

func (s *CatalogService) BySeller(ctx context.Context, seller string) ([]models.Dataset, error) {
	addr, err := models.CanonicalIdentity(seller)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Datasets(s.repomanager.DB()).ListBySeller(ctx, addr)
	if err != nil {
		return nil, err
	}
	return derefDatasets(list), nil
}

// Analytics summarizes a seller's listings. Sales and revenue count the
// transfers to the seller for their own listings that were not cancelled.
func (s *CatalogService) Analytics(ctx context.Context, seller string) (models.SellerAnalytics, error) {
	addr, err := models.CanonicalIdentity(seller)
	if err != nil {
		return models.SellerAnalytics{}, err
	}

	var (
		listings []*models.Dataset
		received []*models.Transfer
	)
	err = s.repomanager.WithReadTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if listings, err = s.repomanager.Datasets(tx).ListBySeller(ctx, addr); err != nil {
			return err
		}
		received, err = s.repomanager.Transfers(tx).ListByRecipient(ctx, addr)
		return err
	})
	if err != nil {
		return models.SellerAnalytics{}, err
	}

	return summarize(addr, listings, received), nil
}

func summarize(seller string, listings []*models.Dataset, received []*models.Transfer) models.SellerAnalytics {
	a := models.SellerAnalytics{
		Seller:            seller,
		Datasets:          len(listings),
		Revenue:           big.Zero(),
		AverageOrderValue: big.Zero(),
		TopDatasets:       []models.Dataset{},
	}

	owned := make(map[string]bool, len(listings))
	for _, d := range listings {
		owned[d.ID] = true
		a.TotalViews += d.Views
	}

	for _, t := range received {
		if t.Status == models.TransferCancelled || !owned[t.ItemID] {
			continue
		}
		a.TotalSales++
		a.Revenue = big.Add(a.Revenue, t.Amount)
	}

	if a.TotalSales > 0 {
		a.AverageOrderValue = big.Div(a.Revenue, big.NewInt(a.TotalSales))
	}
	if a.TotalViews > 0 {
		a.ConversionRate = float64(a.TotalSales) / float64(a.TotalViews)
	}

	top := derefDatasets(listings)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Sales != top[j].Sales {
			return top[i].Sales > top[j].Sales
		}
		return top[i].Views > top[j].Views
	})
	if len(top) > topDatasets {
		top = top[:topDatasets]
	}
	a.TopDatasets = top
	return a
}

func derefDatasets(in []*models.Dataset) []models.Dataset {
	out := make([]models.Dataset, 0, len(in))
	for _, d := range in {
		out = append(out, *d)
	}
	return out
}
