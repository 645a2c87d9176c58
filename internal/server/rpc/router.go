package rpc

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/server/metrics"
)

// Verifier resolves a bearer token into its permissions.
type Verifier func(ctx context.Context, token string) ([]auth.Permission, error)

type RouterOptions struct {
	Verify  Verifier
	Metrics metrics.Recorder
	// MetricsHandler is served at /metrics when set.
	MetricsHandler http.Handler
	// Limit wraps the RPC endpoint; nil disables rate limiting.
	Limit  func(http.Handler) http.Handler
	Logger logging.Logger
}

// NewRouter mounts m at /rpc/v0 behind token auth and, when configured,
// the rate limiter. Calls without a token get read permission.
func NewRouter(m api.Market, opts RouterOptions) http.Handler {
	rpcServer := jsonrpc.NewServer(jsonrpc.WithServerErrors(api.RPCErrors))
	rpcServer.Register(common.RPCNamespace, api.PermissionedMarketAPI(m))

	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	log := opts.Logger.With("module", "rpc")

	ah := &auth.Handler{
		Verify: func(ctx context.Context, token string) ([]auth.Permission, error) {
			perms, err := opts.Verify(ctx, token)
			if err != nil {
				rec.RecordAuthFailure()
				log.Warn(ctx, "rejected token", "error", err)
			}
			return perms, err
		},
		Next: rpcServer.ServeHTTP,
	}

	var rpcHandler http.Handler = ah
	if opts.Limit != nil {
		rpcHandler = opts.Limit(rpcHandler)
	}

	r := mux.NewRouter()
	r.Handle("/rpc/v0", rpcHandler)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}
	return r
}
