// Package wallet is a development signing agent. It derives a fixed set of
// accounts from a seed, authorizes them on request and pushes the account
// list to subscribers whenever it changes. It never signs anything.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

var (
	ErrRejected     = errors.New("user rejected the request")
	ErrLocked       = errors.New("agent is locked")
	ErrUnknownIndex = errors.New("no account at index")
)

const subscriberBuffer = 8

// Agent implements api.Wallet.
type Agent struct {
	logger logging.Logger

	mu          sync.Mutex
	accounts    []string
	active      int
	authorized  bool
	autoApprove bool
	subs        map[chan []string]struct{}
}

var _ api.Wallet = (*Agent)(nil)

// NewAgent derives n accounts from seed. With autoApprove false every
// WalletRequestAccounts call is rejected, which lets the client exercise
// its error path.
func NewAgent(seed string, n int, autoApprove bool, l logging.Logger) *Agent {
	accounts := make([]string, 0, n)
	for i := range n {
		accounts = append(accounts, models.AddressFromPublicKey([]byte(fmt.Sprintf("%s/%d", seed, i))))
	}
	return &Agent{
		logger:      l.With("module", "wallet"),
		accounts:    accounts,
		autoApprove: autoApprove,
		subs:        make(map[chan []string]struct{}),
	}
}

// Authorize marks the accounts as already approved, as if the user had
// connected in an earlier session.
func (a *Agent) Authorize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authorized = true
	a.broadcastLocked()
}

func (a *Agent) WalletAccounts(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visibleLocked(), nil
}

func (a *Agent) WalletRequestAccounts(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.autoApprove {
		a.logger.Info(ctx, "account request rejected")
		return nil, ErrRejected
	}
	if !a.authorized {
		a.authorized = true
		a.logger.Info(ctx, "accounts authorized", "active", a.accounts[a.active])
		a.broadcastLocked()
	}
	return a.visibleLocked(), nil
}

// WalletAccountsChanged sends the current list right away and then every
// change until ctx is done.
func (a *Agent) WalletAccountsChanged(ctx context.Context) (<-chan []string, error) {
	ch := make(chan []string, subscriberBuffer)

	a.mu.Lock()
	a.subs[ch] = struct{}{}
	ch <- a.visibleLocked()
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		delete(a.subs, ch)
		close(ch)
		a.mu.Unlock()
	}()

	return ch, nil
}

func (a *Agent) WalletSelect(ctx context.Context, index int) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.authorized {
		return nil, ErrLocked
	}
	if index < 0 || index >= len(a.accounts) {
		return nil, fmt.Errorf("%w %d", ErrUnknownIndex, index)
	}
	if index != a.active {
		a.active = index
		a.logger.Info(ctx, "active account changed", "active", a.accounts[index])
		a.broadcastLocked()
	}
	return a.visibleLocked(), nil
}

func (a *Agent) WalletLock(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.authorized {
		a.authorized = false
		a.logger.Info(ctx, "agent locked")
		a.broadcastLocked()
	}
	return nil
}

// visibleLocked returns the authorized accounts with the active one first.
func (a *Agent) visibleLocked() []string {
	if !a.authorized {
		return []string{}
	}
	out := make([]string, 0, len(a.accounts))
	out = append(out, a.accounts[a.active])
	for i, acc := range a.accounts {
		if i != a.active {
			out = append(out, acc)
		}
	}
	return out
}

// broadcastLocked never blocks; a subscriber that stopped reading misses
// updates until it drains its buffer.
func (a *Agent) broadcastLocked() {
	list := a.visibleLocked()
	for ch := range a.subs {
		select {
		case ch <- list:
		default:
			a.logger.Warn(context.Background(), "subscriber is slow, dropping update")
		}
	}
}
