package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	fbig "github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/fil"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
	sauth "github.com/dmitrijs2005/datamarket/internal/server/auth"
	"github.com/dmitrijs2005/datamarket/internal/server/blobstore"
	"github.com/dmitrijs2005/datamarket/internal/server/metrics"
	"github.com/dmitrijs2005/datamarket/internal/server/ratelimit"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/datamarket/internal/server/services"
)

const (
	seller = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	buyer  = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

type authCounter struct {
	metrics.Nop
	failures atomic.Int32
}

func (a *authCounter) RecordAuthFailure() { a.failures.Add(1) }

type testServer struct {
	url    string
	issuer *sauth.Issuer
	rec    *authCounter
}

func startServer(t *testing.T, limit func(http.Handler) http.Handler) *testServer {
	t.Helper()

	log := logging.Discard()
	rm := repomanager.NewMemoryRepositoryManager()
	issuer := sauth.NewIssuer("test-secret", time.Hour)
	rec := &authCounter{}

	h := NewMarketHandler(
		services.NewStorageService(rm, blobstore.NewMemoryStore(), rec, log),
		services.NewPaymentService(rm, rec, log, time.Hour),
		services.NewCatalogService(rm, log),
		issuer,
	)

	srv := httptest.NewServer(NewRouter(h, RouterOptions{
		Verify:  issuer.Verify,
		Metrics: rec,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
		Limit:  limit,
		Logger: log,
	}))
	t.Cleanup(srv.Close)

	return &testServer{url: srv.URL, issuer: issuer, rec: rec}
}

func (s *testServer) client(t *testing.T, token string) api.Market {
	t.Helper()

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	var res api.MarketStruct
	closer, err := jsonrpc.NewMergeClient(context.Background(), s.url+"/rpc/v0", common.RPCNamespace,
		[]interface{}{&res.Internal}, header, jsonrpc.WithErrors(api.RPCErrors))
	require.NoError(t, err)
	t.Cleanup(closer)
	return &res
}

func (s *testServer) token(t *testing.T, perms ...auth.Permission) string {
	t.Helper()
	tok, err := s.issuer.New(context.Background(), perms)
	require.NoError(t, err)
	return tok
}

func TestRouter_ReadWithoutToken(t *testing.T) {
	s := startServer(t, nil)
	c := s.client(t, "")
	ctx := context.Background()

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, api.Version, v)

	list, err := c.CatalogList(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.StorageStore(ctx, models.StoreRequest{Owner: seller, Payload: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing permission")

	_, err = c.AuthNew(ctx, api.AllPermissions)
	require.Error(t, err)
}

func TestRouter_MarketFlow(t *testing.T) {
	s := startServer(t, nil)
	c := s.client(t, s.token(t, api.PermRead, api.PermWrite))
	ctx := context.Background()

	id, err := c.StorageStore(ctx, models.StoreRequest{
		Owner:   seller,
		Payload: []byte("col\n1\n"),
		Metadata: models.UploadMetadata{
			Title:    "Numbers",
			Category: models.CategoryAnalytics,
			Price:    fbig.NewInt(42),
			FileName: "n.csv",
		},
	})
	require.NoError(t, err)

	st, err := c.StorageStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStored, st.State)

	d, err := c.CatalogPublish(ctx, models.PublishRequest{CID: id, Seller: seller})
	require.NoError(t, err)
	assert.Equal(t, "42", d.Price.String())

	tr, err := c.PayCreate(ctx, models.TransferRequest{
		ID: "pay_rpc", ItemID: d.ID, Recipient: seller, Payer: buyer, Amount: d.Price,
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_rpc", tr.ID)

	active, err := c.PayListActive(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = c.PayCancel(ctx, tr.ID, seller)
	var fb *api.ErrForbidden
	assert.True(t, errors.As(err, &fb), "got %v", err)

	_, err = c.PayCancel(ctx, tr.ID, buyer)
	require.NoError(t, err)

	_, err = c.PayCancel(ctx, tr.ID, buyer)
	var it *api.ErrInvalidTransition
	assert.True(t, errors.As(err, &it), "got %v", err)

	_, err = c.PayStatus(ctx, "pay_missing")
	var tnf *api.ErrTransferNotFound
	assert.True(t, errors.As(err, &tnf), "got %v", err)

	_, err = c.CatalogGet(ctx, "ds_missing")
	var dnf *api.ErrDatasetNotFound
	assert.True(t, errors.As(err, &dnf), "got %v", err)

	_, err = c.PayCreate(ctx, models.TransferRequest{ItemID: d.ID, Recipient: seller, Payer: buyer, Amount: fbig.Zero()})
	var ir *api.ErrInvalidRequest
	assert.True(t, errors.As(err, &ir), "got %v", err)

	_, err = c.PaySettle(ctx)
	require.Error(t, err, "settling needs admin")
}

func TestRouter_PayToOpaqueRecipient(t *testing.T) {
	s := startServer(t, nil)
	c := s.client(t, s.token(t, api.PermRead, api.PermWrite))
	ctx := context.Background()

	tr, err := c.PayCreate(ctx, models.TransferRequest{
		ItemID: "ds-1", Recipient: "0xSeller", Payer: buyer, Amount: fil.MustParse("2.5"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)

	st, err := c.PayStatus(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferActive, st.Status)
	assert.Equal(t, "0xSeller", st.Recipient)
}

func TestRouter_AdminMintsTokens(t *testing.T) {
	s := startServer(t, nil)
	admin := s.client(t, s.token(t, api.AllPermissions...))
	ctx := context.Background()

	tok, err := admin.AuthNew(ctx, []auth.Permission{api.PermRead})
	require.NoError(t, err)

	perms, err := s.issuer.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, []auth.Permission{api.PermRead}, perms)

	n, err := admin.PaySettle(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRouter_BadTokenIsRejected(t *testing.T) {
	s := startServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, s.url+"/rpc/v0", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), s.rec.failures.Load())
}

func TestRouter_MetricsAndRateLimit(t *testing.T) {
	lim := ratelimit.New(ratelimit.Config{Rate: 0.001, Burst: 1})
	s := startServer(t, lim.Middleware)

	resp, err := http.Get(s.url + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "metrics are not rate limited")

	c := s.client(t, "")
	_, err = c.Version(context.Background())
	require.NoError(t, err)

	_, err = c.Version(context.Background())
	require.Error(t, err)

	resp, err = http.Post(s.url+"/rpc/v0", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
