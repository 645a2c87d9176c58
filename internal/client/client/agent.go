package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/common"
)

// DialAgent connects to the signing agent. The address must be a ws:// or
// wss:// URL because account changes are pushed over the connection.
func DialAgent(ctx context.Context, addr string) (api.Wallet, jsonrpc.ClientCloser, error) {
	var res api.WalletStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, common.WalletNamespace,
		[]interface{}{
			&res.Internal,
		},
		http.Header{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrAgentUnavailable, err)
	}
	return &res, closer, nil
}
