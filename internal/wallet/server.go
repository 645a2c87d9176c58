package wallet

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
)

// NewHandler serves a under the Wallet namespace at /rpc/v0. Clients must
// use a websocket connection to receive account changes.
func NewHandler(a *Agent) http.Handler {
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(common.WalletNamespace, a)

	r := mux.NewRouter()
	r.Handle("/rpc/v0", rpcServer)
	return r
}

// Serve runs the agent's HTTP server on addr until ctx is done.
func Serve(ctx context.Context, addr string, a *Agent, l logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	l.Info(ctx, "Starting wallet agent", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
