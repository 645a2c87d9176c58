package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

var testLog = logging.Discard()

// ---- fake agent ----

type fakeAgent struct {
	mu sync.Mutex

	accounts    []string
	requestRet  []string
	requestErr  error
	accountsErr error
	subErr      error

	// if set, WalletRequestAccounts blocks until it is closed
	gate chan struct{}

	changes chan []string
}

func newFakeAgent(requestRet ...string) *fakeAgent {
	return &fakeAgent{requestRet: requestRet, changes: make(chan []string, 4)}
}

func (a *fakeAgent) WalletAccounts(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accounts, a.accountsErr
}

func (a *fakeAgent) WalletRequestAccounts(ctx context.Context) ([]string, error) {
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requestRet, a.requestErr
}

func (a *fakeAgent) WalletAccountsChanged(ctx context.Context) (<-chan []string, error) {
	if a.subErr != nil {
		return nil, a.subErr
	}
	return a.changes, nil
}

// ---- fake identity ----

type fakeIdentity struct{ addr string }

func (f fakeIdentity) Address() (string, bool) { return f.addr, f.addr != "" }

// ---- fake storage ----

type fakeStorage struct {
	mu sync.Mutex

	storeErr  error
	gate      chan struct{}
	entered   chan struct{}
	lastOwner string
	lastData  []byte
	lastMeta  models.UploadMetadata
	statuses  map[string]models.ContentStatus
}

func (s *fakeStorage) Store(ctx context.Context, owner string, payload []byte, meta models.UploadMetadata) (string, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOwner, s.lastData, s.lastMeta = owner, payload, meta
	if s.storeErr != nil {
		return "", s.storeErr
	}
	return "bafkreitestcid", nil
}

func (s *fakeStorage) Status(ctx context.Context, cid string) (models.ContentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[cid]
	if !ok {
		return models.ContentStatus{}, common.ErrorNotFound
	}
	return st, nil
}

// ---- fake payment network ----

// fakeNetwork keeps transfers in memory and enforces the status rules the
// real network does.
type fakeNetwork struct {
	mu sync.Mutex

	transfers map[string]models.Transfer
	createErr error
	listErr   error
	extra     []models.Transfer // returned by ListActive in addition to stored ones

	gate    chan struct{}
	entered chan struct{}
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{transfers: make(map[string]models.Transfer)}
}

func (n *fakeNetwork) CreateTransfer(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	if n.entered != nil {
		n.entered <- struct{}{}
	}
	if n.gate != nil {
		<-n.gate
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.createErr != nil {
		return models.Transfer{}, n.createErr
	}
	if _, ok := n.transfers[req.ID]; ok {
		return models.Transfer{}, common.ErrorAlreadyExists
	}
	t := models.Transfer{
		ID:        req.ID,
		ItemID:    req.ItemID,
		Recipient: req.Recipient,
		Payer:     req.Payer,
		Amount:    req.Amount,
		StartTime: time.Now().UTC(),
		Status:    models.TransferActive,
	}
	n.transfers[t.ID] = t
	return t, nil
}

func (n *fakeNetwork) TransferStatus(ctx context.Context, id string) (models.PaymentStatus, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.transfers[id]
	if !ok {
		return models.PaymentStatus{}, common.ErrorNotFound
	}
	return t.Snapshot(), nil
}

func (n *fakeNetwork) CancelTransfer(ctx context.Context, id string, payer string) (models.Transfer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.transfers[id]
	if !ok {
		return models.Transfer{}, common.ErrorNotFound
	}
	if t.Payer != payer {
		return models.Transfer{}, common.ErrForbidden
	}
	if !t.Finish(models.TransferCancelled, time.Now()) {
		return models.Transfer{}, common.ErrInvalidTransition
	}
	n.transfers[id] = t
	return t, nil
}

func (n *fakeNetwork) ListActive(ctx context.Context, payer string) ([]models.Transfer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listErr != nil {
		return nil, n.listErr
	}
	var out []models.Transfer
	for _, t := range n.transfers {
		if t.Payer == payer && t.Active() {
			out = append(out, t)
		}
	}
	return append(out, n.extra...), nil
}

func (n *fakeNetwork) History(ctx context.Context, identity string) ([]models.Transfer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Transfer
	for _, t := range n.transfers {
		if t.Payer == identity || t.Recipient == identity {
			out = append(out, t)
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")
