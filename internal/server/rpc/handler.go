package rpc

import (
	"context"

	"github.com/filecoin-project/go-jsonrpc/auth"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/models"
	"github.com/dmitrijs2005/datamarket/internal/server/services"
)

// TokenIssuer mints API tokens for AuthNew.
type TokenIssuer interface {
	New(ctx context.Context, perms []auth.Permission) (string, error)
}

// MarketHandler adapts the services to api.Market. Every error leaving it
// goes through api.ToRPC so the client receives a registered error code.
type MarketHandler struct {
	storage *services.StorageService
	payment *services.PaymentService
	catalog *services.CatalogService
	tokens  TokenIssuer
}

var _ api.Market = (*MarketHandler)(nil)

func NewMarketHandler(s *services.StorageService, p *services.PaymentService, c *services.CatalogService, t TokenIssuer) *MarketHandler {
	return &MarketHandler{storage: s, payment: p, catalog: c, tokens: t}
}

func (h *MarketHandler) StorageStore(ctx context.Context, req models.StoreRequest) (string, error) {
	id, err := h.storage.Store(ctx, req)
	return id, api.ToRPC(err, &api.ErrContentNotFound{})
}

func (h *MarketHandler) StorageStatus(ctx context.Context, cid string) (models.ContentStatus, error) {
	st, err := h.storage.Status(ctx, cid)
	return st, api.ToRPC(err, &api.ErrContentNotFound{})
}

func (h *MarketHandler) StorageVerify(ctx context.Context, cid string) (models.Verification, error) {
	v, err := h.storage.Verify(ctx, cid)
	return v, api.ToRPC(err, &api.ErrContentNotFound{})
}

func (h *MarketHandler) PayCreate(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	t, err := h.payment.Create(ctx, req)
	return t, api.ToRPC(err, &api.ErrTransferNotFound{})
}

func (h *MarketHandler) PayStatus(ctx context.Context, id string) (models.PaymentStatus, error) {
	st, err := h.payment.Status(ctx, id)
	return st, api.ToRPC(err, &api.ErrTransferNotFound{})
}

func (h *MarketHandler) PayCancel(ctx context.Context, id string, payer string) (models.Transfer, error) {
	t, err := h.payment.Cancel(ctx, id, payer)
	return t, api.ToRPC(err, &api.ErrTransferNotFound{})
}

func (h *MarketHandler) PayListActive(ctx context.Context, payer string) ([]models.Transfer, error) {
	list, err := h.payment.ListActive(ctx, payer)
	return list, api.ToRPC(err, &api.ErrTransferNotFound{})
}

func (h *MarketHandler) PayHistory(ctx context.Context, identity string) ([]models.Transfer, error) {
	list, err := h.payment.History(ctx, identity)
	return list, api.ToRPC(err, &api.ErrTransferNotFound{})
}

func (h *MarketHandler) PaySettle(ctx context.Context) (int, error) {
	n, err := h.payment.SettleExpired(ctx)
	return n, api.ToRPC(err, &api.ErrTransferNotFound{})
}

func (h *MarketHandler) CatalogPublish(ctx context.Context, req models.PublishRequest) (models.Dataset, error) {
	d, err := h.catalog.Publish(ctx, req)
	return d, api.ToRPC(err, &api.ErrContentNotFound{})
}

func (h *MarketHandler) CatalogList(ctx context.Context, category string) ([]models.Dataset, error) {
	list, err := h.catalog.List(ctx, category)
	return list, api.ToRPC(err, &api.ErrDatasetNotFound{})
}

func (h *MarketHandler) CatalogGet(ctx context.Context, id string) (models.Dataset, error) {
	d, err := h.catalog.Get(ctx, id)
	return d, api.ToRPC(err, &api.ErrDatasetNotFound{})
}

func (h *MarketHandler) CatalogBySeller(ctx context.Context, seller string) ([]models.Dataset, error) {
	list, err := h.catalog.BySeller(ctx, seller)
	return list, api.ToRPC(err, &api.ErrDatasetNotFound{})
}

func (h *MarketHandler) CatalogAnalytics(ctx context.Context, seller string) (models.SellerAnalytics, error) {
	a, err := h.catalog.Analytics(ctx, seller)
	return a, api.ToRPC(err, &api.ErrDatasetNotFound{})
}

func (h *MarketHandler) AuthNew(ctx context.Context, perms []auth.Permission) (string, error) {
	return h.tokens.New(ctx, perms)
}

func (h *MarketHandler) Version(context.Context) (string, error) {
	return api.Version, nil
}
