package wallet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

func TestAgent_DerivesStableAccounts(t *testing.T) {
	a := NewAgent("seed", 3, true, logging.Discard())
	b := NewAgent("seed", 3, true, logging.Discard())
	c := NewAgent("other", 3, true, logging.Discard())

	assert.Equal(t, a.accounts, b.accounts)
	assert.NotEqual(t, a.accounts, c.accounts)
	for _, acc := range a.accounts {
		n, err := models.NormalizeAddress(acc)
		require.NoError(t, err)
		assert.Equal(t, acc, n)
	}
}

func TestAgent_RequestSelectLock(t *testing.T) {
	ctx := context.Background()
	a := NewAgent("seed", 3, true, logging.Discard())

	accs, err := a.WalletAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accs, "nothing authorized yet")

	_, err = a.WalletSelect(ctx, 1)
	assert.ErrorIs(t, err, ErrLocked)

	accs, err = a.WalletRequestAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 3)
	assert.Equal(t, a.accounts[0], accs[0])

	accs, err = a.WalletSelect(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, a.accounts[2], accs[0])
	assert.ElementsMatch(t, a.accounts, accs)

	_, err = a.WalletSelect(ctx, 7)
	assert.ErrorIs(t, err, ErrUnknownIndex)

	require.NoError(t, a.WalletLock(ctx))
	accs, err = a.WalletAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accs)
}

func TestAgent_RejectsWithoutApproval(t *testing.T) {
	a := NewAgent("seed", 1, false, logging.Discard())

	_, err := a.WalletRequestAccounts(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
}

func TestAgent_AccountsChangedStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := NewAgent("seed", 2, true, logging.Discard())

	ch, err := a.WalletAccountsChanged(ctx)
	require.NoError(t, err)
	assert.Empty(t, <-ch, "current list is sent first")

	_, err = a.WalletRequestAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, <-ch, 2)

	_, err = a.WalletSelect(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, a.accounts[1], (<-ch)[0])

	require.NoError(t, a.WalletLock(ctx))
	assert.Empty(t, <-ch)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel closes when the subscriber goes away")
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestHandler_WebsocketRoundTrip(t *testing.T) {
	a := NewAgent("seed", 2, true, logging.Discard())
	srv := httptest.NewServer(NewHandler(a))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var w api.WalletStruct
	closer, err := jsonrpc.NewMergeClient(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/rpc/v0",
		common.WalletNamespace, []interface{}{&w.Internal}, http.Header{})
	require.NoError(t, err)
	defer closer()

	ch, err := w.WalletAccountsChanged(ctx)
	require.NoError(t, err)
	assert.Empty(t, <-ch)

	accs, err := w.WalletRequestAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 2)

	select {
	case got := <-ch:
		assert.Equal(t, accs, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no accounts-changed notification")
	}

	require.NoError(t, w.WalletLock(ctx))
	select {
	case got := <-ch:
		assert.Empty(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification after lock")
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg, []string{"-a", ":9999", "--seed", "s", "-n", "0", "--approve=false", "--preauthorized", "-c", "ignored.json"})

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "s", cfg.Seed)
	assert.Equal(t, 1, cfg.Accounts)
	assert.False(t, cfg.AutoApprove)
	assert.True(t, cfg.Preauthorized)
}
