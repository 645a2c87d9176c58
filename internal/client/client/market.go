package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/filecoin-project/go-jsonrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// Options configures NewMarketClient.
type Options struct {
	// RPCAddr is the JSON-RPC endpoint, e.g. http://127.0.0.1:8090/rpc/v0.
	RPCAddr string
	// HealthAddr is the gRPC health endpoint, e.g. 127.0.0.1:8091.
	HealthAddr string
	// Token is sent as a bearer token. Empty means read-only access.
	Token string
}

// MarketClient talks to marketd. It is safe for concurrent use.
type MarketClient struct {
	api    api.Market
	closer jsonrpc.ClientCloser

	conn   *grpc.ClientConn
	health grpc_health_v1.HealthClient
}

// NewMarketClient builds the JSON-RPC and health clients. Neither connects
// until the first call, so a client can be created while marketd is down.
func NewMarketClient(ctx context.Context, opts Options) (*MarketClient, error) {
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	var res api.MarketStruct
	closer, err := jsonrpc.NewMergeClient(ctx, opts.RPCAddr, common.RPCNamespace,
		[]interface{}{
			&res.Internal,
		},
		header,
		jsonrpc.WithErrors(api.RPCErrors),
	)
	if err != nil {
		return nil, fmt.Errorf("market rpc client: %w", err)
	}

	conn, err := grpc.NewClient(opts.HealthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		closer()
		return nil, fmt.Errorf("health client: %w", err)
	}

	return &MarketClient{
		api:    &res,
		closer: closer,
		conn:   conn,
		health: grpc_health_v1.NewHealthClient(conn),
	}, nil
}

func (c *MarketClient) Close() error {
	if c.closer != nil {
		c.closer()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping reports whether marketd is serving.
func (c *MarketClient) Ping(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return mapHealthError(err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (c *MarketClient) Version(ctx context.Context) (string, error) {
	v, err := c.api.Version(ctx)
	return v, mapError(err)
}

// Storage network.

func (c *MarketClient) Store(ctx context.Context, owner string, payload []byte, meta models.UploadMetadata) (string, error) {
	cid, err := c.api.StorageStore(ctx, models.StoreRequest{Owner: owner, Payload: payload, Metadata: meta})
	return cid, mapError(err)
}

func (c *MarketClient) Status(ctx context.Context, cid string) (models.ContentStatus, error) {
	st, err := c.api.StorageStatus(ctx, cid)
	return st, mapError(err)
}

func (c *MarketClient) Verify(ctx context.Context, cid string) (models.Verification, error) {
	v, err := c.api.StorageVerify(ctx, cid)
	return v, mapError(err)
}

// Payment network.

func (c *MarketClient) CreateTransfer(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	t, err := c.api.PayCreate(ctx, req)
	return t, mapError(err)
}

func (c *MarketClient) TransferStatus(ctx context.Context, id string) (models.PaymentStatus, error) {
	st, err := c.api.PayStatus(ctx, id)
	return st, mapError(err)
}

func (c *MarketClient) CancelTransfer(ctx context.Context, id string, payer string) (models.Transfer, error) {
	t, err := c.api.PayCancel(ctx, id, payer)
	return t, mapError(err)
}

func (c *MarketClient) ListActive(ctx context.Context, payer string) ([]models.Transfer, error) {
	list, err := c.api.PayListActive(ctx, payer)
	return list, mapError(err)
}

func (c *MarketClient) History(ctx context.Context, identity string) ([]models.Transfer, error) {
	list, err := c.api.PayHistory(ctx, identity)
	return list, mapError(err)
}

// Catalog.

func (c *MarketClient) Publish(ctx context.Context, cid, seller string) (models.Dataset, error) {
	d, err := c.api.CatalogPublish(ctx, models.PublishRequest{CID: cid, Seller: seller})
	return d, mapError(err)
}

func (c *MarketClient) Datasets(ctx context.Context, category string) ([]models.Dataset, error) {
	list, err := c.api.CatalogList(ctx, category)
	return list, mapError(err)
}

func (c *MarketClient) Dataset(ctx context.Context, id string) (models.Dataset, error) {
	d, err := c.api.CatalogGet(ctx, id)
	return d, mapError(err)
}

func (c *MarketClient) SellerDatasets(ctx context.Context, seller string) ([]models.Dataset, error) {
	list, err := c.api.CatalogBySeller(ctx, seller)
	return list, mapError(err)
}

func (c *MarketClient) Analytics(ctx context.Context, seller string) (models.SellerAnalytics, error) {
	a, err := c.api.CatalogAnalytics(ctx, seller)
	return a, mapError(err)
}

// mapError converts transport and typed RPC errors into sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.As(err, new(*jsonrpc.RPCConnectionError)) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "missing permission") || strings.Contains(msg, "401 Unauthorized") {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return api.FromRPC(err)
}

func mapHealthError(err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
