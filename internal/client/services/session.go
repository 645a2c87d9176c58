// Package services contains the client-side session managers: the wallet
// session, the upload session and the payment session. Each manager is
// built once at startup and shared by the CLI commands; managers never call
// each other, upload and payment only read the wallet session's state.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
)

// Agent is the signing agent the session talks to. It holds the user's
// accounts; the session only ever learns their addresses.
type Agent interface {
	WalletAccounts(ctx context.Context) ([]string, error)
	WalletRequestAccounts(ctx context.Context) ([]string, error)
	WalletAccountsChanged(ctx context.Context) (<-chan []string, error)
}

// SessionState is a point-in-time copy of the wallet session.
// Connected is true exactly when Address is non-empty.
type SessionState struct {
	Address    string
	Connected  bool
	Connecting bool
	Error      string
}

// SessionManager tracks which account, if any, is connected.
type SessionManager struct {
	agent Agent
	log   logging.Logger

	mu         sync.RWMutex
	address    string
	connecting bool
	lastErr    string
	listeners  map[int]func(SessionState)
	nextID     int
}

// NewSessionManager returns a disconnected session. agent may be nil when no
// signing agent could be reached; Connect then fails with
// common.ErrAgentUnavailable.
func NewSessionManager(agent Agent, log logging.Logger) *SessionManager {
	return &SessionManager{
		agent:     agent,
		log:       log.With("module", "session"),
		listeners: make(map[int]func(SessionState)),
	}
}

// Start adopts the first already-authorized account, if any, and follows the
// agent's account changes until ctx is done. It returns once the initial
// read and subscription are done.
func (m *SessionManager) Start(ctx context.Context) error {
	if m.agent == nil {
		m.log.Warn(ctx, "no signing agent, session stays disconnected")
		return nil
	}

	accounts, err := m.agent.WalletAccounts(ctx)
	if err != nil {
		m.setError(err)
		return fmt.Errorf("read accounts: %w", err)
	}
	if len(accounts) > 0 {
		m.applyAccounts(ctx, accounts)
	}

	ch, err := m.agent.WalletAccountsChanged(ctx)
	if err != nil {
		m.setError(err)
		return fmt.Errorf("subscribe to account changes: %w", err)
	}

	go m.watch(ctx, ch)
	return nil
}

func (m *SessionManager) watch(ctx context.Context, ch <-chan []string) {
	for {
		select {
		case <-ctx.Done():
			return
		case accounts, ok := <-ch:
			if !ok {
				m.log.Warn(ctx, "account change feed closed")
				return
			}
			m.applyAccounts(ctx, accounts)
		}
	}
}

// applyAccounts follows the agent: zero accounts disconnects, otherwise the
// first account becomes the identity.
func (m *SessionManager) applyAccounts(ctx context.Context, accounts []string) {
	m.mu.Lock()
	prev := m.address
	if len(accounts) == 0 {
		m.address = ""
	} else {
		m.address = accounts[0]
	}
	cur := m.address
	m.mu.Unlock()

	if prev != cur {
		m.log.Info(ctx, "accounts changed", "address", cur)
		m.notify()
	}
}

// Connect asks the agent for accounts and adopts the first one.
func (m *SessionManager) Connect(ctx context.Context) (string, error) {
	if m.agent == nil {
		m.setError(common.ErrAgentUnavailable)
		return "", common.ErrAgentUnavailable
	}

	m.mu.Lock()
	m.connecting = true
	m.mu.Unlock()
	m.notify()

	defer func() {
		m.mu.Lock()
		m.connecting = false
		m.mu.Unlock()
		m.notify()
	}()

	accounts, err := m.agent.WalletRequestAccounts(ctx)
	if err != nil {
		err = fmt.Errorf("request accounts: %w", err)
		m.setError(err)
		return "", err
	}
	if len(accounts) == 0 {
		m.setError(common.ErrNoAccounts)
		return "", common.ErrNoAccounts
	}

	m.mu.Lock()
	m.address = accounts[0]
	m.lastErr = ""
	m.mu.Unlock()

	m.log.Info(ctx, "wallet connected", "address", accounts[0])
	return accounts[0], nil
}

// Disconnect forgets the identity and any recorded error. The agent keeps
// its authorization; this is a local sign-out.
func (m *SessionManager) Disconnect() {
	m.mu.Lock()
	m.address = ""
	m.lastErr = ""
	m.mu.Unlock()
	m.notify()
}

func (m *SessionManager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// Address returns the connected identity and whether there is one.
func (m *SessionManager) Address() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.address, m.address != ""
}

// OnChange registers fn to be called after every state change.
// The returned func unregisters it.
func (m *SessionManager) OnChange(fn func(SessionState)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *SessionManager) stateLocked() SessionState {
	return SessionState{
		Address:    m.address,
		Connected:  m.address != "",
		Connecting: m.connecting,
		Error:      m.lastErr,
	}
}

func (m *SessionManager) setError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.notify()
}

func (m *SessionManager) notify() {
	m.mu.RLock()
	st := m.stateLocked()
	fns := make([]func(SessionState), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}
