// Package api defines the JSON-RPC surface of marketd and of the signing
// agent. The *Struct types double as go-jsonrpc client proxies and as the
// permission-checking wrappers used on the server.
package api

import (
	"context"

	"github.com/filecoin-project/go-jsonrpc/auth"

	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Version is reported by Market.Version.
const Version = "datamarket/0.3.0"

// Market is served by marketd under the "Market" namespace.
type Market interface {
	// Storage network.
	StorageStore(ctx context.Context, req models.StoreRequest) (string, error)
	StorageStatus(ctx context.Context, cid string) (models.ContentStatus, error)
	StorageVerify(ctx context.Context, cid string) (models.Verification, error)

	// Payment network.
	PayCreate(ctx context.Context, req models.TransferRequest) (models.Transfer, error)
	PayStatus(ctx context.Context, id string) (models.PaymentStatus, error)
	PayCancel(ctx context.Context, id string, payer string) (models.Transfer, error)
	PayListActive(ctx context.Context, payer string) ([]models.Transfer, error)
	PayHistory(ctx context.Context, identity string) ([]models.Transfer, error)
	// PaySettle completes every active transfer older than the stream
	// duration and returns how many were settled.
	PaySettle(ctx context.Context) (int, error)

	// Catalog.
	CatalogPublish(ctx context.Context, req models.PublishRequest) (models.Dataset, error)
	CatalogList(ctx context.Context, category string) ([]models.Dataset, error)
	CatalogGet(ctx context.Context, id string) (models.Dataset, error)
	CatalogBySeller(ctx context.Context, seller string) ([]models.Dataset, error)
	CatalogAnalytics(ctx context.Context, seller string) (models.SellerAnalytics, error)

	AuthNew(ctx context.Context, perms []auth.Permission) (string, error)
	Version(ctx context.Context) (string, error)
}

type MarketStruct struct {
	Internal struct {
		StorageStore  func(ctx context.Context, req models.StoreRequest) (string, error)  `perm:"write"`
		StorageStatus func(ctx context.Context, cid string) (models.ContentStatus, error) `perm:"read"`
		StorageVerify func(ctx context.Context, cid string) (models.Verification, error)  `perm:"read"`

		PayCreate     func(ctx context.Context, req models.TransferRequest) (models.Transfer, error) `perm:"write"`
		PayStatus     func(ctx context.Context, id string) (models.PaymentStatus, error)             `perm:"read"`
		PayCancel     func(ctx context.Context, id string, payer string) (models.Transfer, error)    `perm:"write"`
		PayListActive func(ctx context.Context, payer string) ([]models.Transfer, error)             `perm:"read"`
		PayHistory    func(ctx context.Context, identity string) ([]models.Transfer, error)          `perm:"read"`
		PaySettle     func(ctx context.Context) (int, error)                                         `perm:"admin"`

		CatalogPublish   func(ctx context.Context, req models.PublishRequest) (models.Dataset, error) `perm:"write"`
		CatalogList      func(ctx context.Context, category string) ([]models.Dataset, error)         `perm:"read"`
		CatalogGet       func(ctx context.Context, id string) (models.Dataset, error)                 `perm:"read"`
		CatalogBySeller  func(ctx context.Context, seller string) ([]models.Dataset, error)           `perm:"read"`
		CatalogAnalytics func(ctx context.Context, seller string) (models.SellerAnalytics, error)     `perm:"read"`

		AuthNew func(ctx context.Context, perms []auth.Permission) (string, error) `perm:"admin"`
		Version func(ctx context.Context) (string, error)                          `perm:"read"`
	}
}

var _ Market = (*MarketStruct)(nil)

func (s *MarketStruct) StorageStore(ctx context.Context, req models.StoreRequest) (string, error) {
	return s.Internal.StorageStore(ctx, req)
}

func (s *MarketStruct) StorageStatus(ctx context.Context, cid string) (models.ContentStatus, error) {
	return s.Internal.StorageStatus(ctx, cid)
}

func (s *MarketStruct) StorageVerify(ctx context.Context, cid string) (models.Verification, error) {
	return s.Internal.StorageVerify(ctx, cid)
}

func (s *MarketStruct) PayCreate(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	return s.Internal.PayCreate(ctx, req)
}

func (s *MarketStruct) PayStatus(ctx context.Context, id string) (models.PaymentStatus, error) {
	return s.Internal.PayStatus(ctx, id)
}

func (s *MarketStruct) PayCancel(ctx context.Context, id string, payer string) (models.Transfer, error) {
	return s.Internal.PayCancel(ctx, id, payer)
}

func (s *MarketStruct) PayListActive(ctx context.Context, payer string) ([]models.Transfer, error) {
	return s.Internal.PayListActive(ctx, payer)
}

func (s *MarketStruct) PayHistory(ctx context.Context, identity string) ([]models.Transfer, error) {
	return s.Internal.PayHistory(ctx, identity)
}

func (s *MarketStruct) PaySettle(ctx context.Context) (int, error) {
	return s.Internal.PaySettle(ctx)
}

func (s *MarketStruct) CatalogPublish(ctx context.Context, req models.PublishRequest) (models.Dataset, error) {
	return s.Internal.CatalogPublish(ctx, req)
}

func (s *MarketStruct) CatalogList(ctx context.Context, category string) ([]models.Dataset, error) {
	return s.Internal.CatalogList(ctx, category)
}

func (s *MarketStruct) CatalogGet(ctx context.Context, id string) (models.Dataset, error) {
	return s.Internal.CatalogGet(ctx, id)
}

func (s *MarketStruct) CatalogBySeller(ctx context.Context, seller string) ([]models.Dataset, error) {
	return s.Internal.CatalogBySeller(ctx, seller)
}

func (s *MarketStruct) CatalogAnalytics(ctx context.Context, seller string) (models.SellerAnalytics, error) {
	return s.Internal.CatalogAnalytics(ctx, seller)
}

func (s *MarketStruct) AuthNew(ctx context.Context, perms []auth.Permission) (string, error) {
	return s.Internal.AuthNew(ctx, perms)
}

func (s *MarketStruct) Version(ctx context.Context) (string, error) {
	return s.Internal.Version(ctx)
}
