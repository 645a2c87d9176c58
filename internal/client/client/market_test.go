package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// fakeMarket implements the calls exercised here; the embedded interface
// covers the rest.
type fakeMarket struct {
	api.Market

	lastStore models.StoreRequest
	transfers map[string]models.Transfer
}

func (f *fakeMarket) StorageStore(ctx context.Context, req models.StoreRequest) (string, error) {
	f.lastStore = req
	return "bafkreifake", nil
}

func (f *fakeMarket) StorageStatus(ctx context.Context, cid string) (models.ContentStatus, error) {
	return models.ContentStatus{}, api.ToRPC(common.ErrorNotFound, &api.ErrContentNotFound{})
}

func (f *fakeMarket) PayCreate(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	t := models.Transfer{ID: req.ID, Payer: req.Payer, Recipient: req.Recipient, Amount: req.Amount, Status: models.TransferActive}
	f.transfers[t.ID] = t
	return t, nil
}

func (f *fakeMarket) PayCancel(ctx context.Context, id string, payer string) (models.Transfer, error) {
	return models.Transfer{}, api.ToRPC(common.ErrInvalidTransition, &api.ErrTransferNotFound{})
}

func (f *fakeMarket) PayStatus(ctx context.Context, id string) (models.PaymentStatus, error) {
	t, ok := f.transfers[id]
	if !ok {
		return models.PaymentStatus{}, api.ToRPC(common.ErrorNotFound, &api.ErrTransferNotFound{})
	}
	return t.Snapshot(), nil
}

func (f *fakeMarket) Version(ctx context.Context) (string, error) {
	return api.Version, nil
}

func startMarket(t *testing.T, tokens map[string][]auth.Permission) (*fakeMarket, string) {
	t.Helper()
	fm := &fakeMarket{transfers: map[string]models.Transfer{}}

	rpcServer := jsonrpc.NewServer(jsonrpc.WithServerErrors(api.RPCErrors))
	rpcServer.Register(common.RPCNamespace, api.PermissionedMarketAPI(fm))

	ah := &auth.Handler{
		Verify: func(ctx context.Context, token string) ([]auth.Permission, error) {
			perms, ok := tokens[token]
			if !ok {
				return nil, errors.New("unknown token")
			}
			return perms, nil
		},
		Next: rpcServer.ServeHTTP,
	}

	srv := httptest.NewServer(ah)
	t.Cleanup(srv.Close)
	return fm, srv.URL
}

func startHealth(t *testing.T, st grpc_health_v1.HealthCheckResponse_ServingStatus) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", st)
	grpc_health_v1.RegisterHealthServer(s, hs)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	return lis.Addr().String()
}

func newTestClient(t *testing.T, url, token string) *MarketClient {
	t.Helper()
	c, err := NewMarketClient(context.Background(), Options{
		RPCAddr:    url,
		HealthAddr: startHealth(t, grpc_health_v1.HealthCheckResponse_SERVING),
		Token:      token,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMarketClient_RoundTrip(t *testing.T) {
	fm, url := startMarket(t, map[string][]auth.Permission{"w": {api.PermRead, api.PermWrite}})
	c := newTestClient(t, url, "w")
	ctx := context.Background()

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, api.Version, v)

	cid, err := c.Store(ctx, "0xAlice", []byte("payload"), models.UploadMetadata{Title: "t", Price: fil.MustParse("1")})
	require.NoError(t, err)
	assert.Equal(t, "bafkreifake", cid)
	assert.Equal(t, "0xAlice", fm.lastStore.Owner)
	assert.Equal(t, []byte("payload"), fm.lastStore.Payload)
	assert.True(t, fm.lastStore.Metadata.Price.Equals(fil.MustParse("1")))

	_, err = c.CreateTransfer(ctx, models.TransferRequest{ID: "pay_1", Payer: "0xAlice", Recipient: "0xBob", Amount: fil.MustParse("2.5")})
	require.NoError(t, err)

	st, err := c.TransferStatus(ctx, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, models.TransferActive, st.Status)
	assert.True(t, st.Amount.Equals(fil.MustParse("2.5")))
}

func TestMarketClient_TypedErrors(t *testing.T) {
	_, url := startMarket(t, map[string][]auth.Permission{"w": {api.PermRead, api.PermWrite}})
	c := newTestClient(t, url, "w")
	ctx := context.Background()

	_, err := c.TransferStatus(ctx, "pay_missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
	var tnf *api.ErrTransferNotFound
	assert.True(t, errors.As(err, &tnf))

	_, err = c.Status(ctx, "bafkmissing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = c.CancelTransfer(ctx, "pay_1", "0xAlice")
	require.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestMarketClient_ReadOnlyTokenCannotWrite(t *testing.T) {
	_, url := startMarket(t, map[string][]auth.Permission{})
	c := newTestClient(t, url, "")

	_, err := c.Version(context.Background())
	require.NoError(t, err, "anonymous callers get read")

	_, err = c.Store(context.Background(), "0xAlice", []byte("x"), models.UploadMetadata{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestMarketClient_BadToken(t *testing.T) {
	_, url := startMarket(t, map[string][]auth.Permission{})
	c := newTestClient(t, url, "forged")

	_, err := c.Version(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestMarketClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, "")
	_, err := c.Version(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMarketClient_Ping(t *testing.T) {
	c, err := NewMarketClient(context.Background(), Options{
		RPCAddr:    "http://127.0.0.1:1/rpc/v0",
		HealthAddr: startHealth(t, grpc_health_v1.HealthCheckResponse_SERVING),
	})
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(context.Background()))

	down, err := NewMarketClient(context.Background(), Options{
		RPCAddr:    "http://127.0.0.1:1/rpc/v0",
		HealthAddr: startHealth(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING),
	})
	require.NoError(t, err)
	defer down.Close()
	require.ErrorIs(t, down.Ping(context.Background()), ErrUnavailable)
}
