package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/filecoin-project/go-state-types/abi"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

// PaymentNetwork registers and tracks recurring transfers.
type PaymentNetwork interface {
	CreateTransfer(ctx context.Context, req models.TransferRequest) (models.Transfer, error)
	TransferStatus(ctx context.Context, id string) (models.PaymentStatus, error)
	CancelTransfer(ctx context.Context, id string, payer string) (models.Transfer, error)
	ListActive(ctx context.Context, payer string) ([]models.Transfer, error)
	History(ctx context.Context, identity string) ([]models.Transfer, error)
}

// PaymentState is a point-in-time copy of the payment session.
type PaymentState struct {
	Processing     bool
	LastTransferID string
	Error          string
}

// PaymentManager creates, inspects and cancels transfers paid by the
// connected identity.
type PaymentManager struct {
	identity Identity
	network  PaymentNetwork
	log      logging.Logger
	newID    func() (string, error)

	creating atomic.Bool
	inflight atomic.Int32

	mu      sync.RWMutex
	lastID  string
	lastErr string
}

func NewPaymentManager(identity Identity, network PaymentNetwork, log logging.Logger) *PaymentManager {
	return &PaymentManager{
		identity: identity,
		network:  network,
		log:      log.With("module", "payment"),
		newID:    common.NewTransferID,
	}
}

func (m *PaymentManager) State() PaymentState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return PaymentState{
		Processing:     m.inflight.Load() > 0,
		LastTransferID: m.lastID,
		Error:          m.lastErr,
	}
}

// CreatePayment opens a transfer of amount from the connected identity to
// recipient for itemID and returns its identifier. Only one creation runs
// at a time; a concurrent call fails with common.ErrBusy.
func (m *PaymentManager) CreatePayment(ctx context.Context, itemID, recipient string, amount abi.TokenAmount) (string, error) {
	if !m.creating.CompareAndSwap(false, true) {
		return "", common.ErrBusy
	}
	defer m.creating.Store(false)

	payer, ok := m.identity.Address()
	if !ok {
		return "", m.fail(common.ErrNotConnected)
	}

	m.begin()
	defer m.end()

	switch {
	case amount.Int == nil || amount.Sign() <= 0:
		return "", m.fail(fmt.Errorf("%w: must be positive", common.ErrInvalidAmount))
	case recipient == "":
		return "", m.fail(fmt.Errorf("%w: empty recipient", common.ErrInvalidAddress))
	}

	id, err := m.newID()
	if err != nil {
		return "", m.fail(fmt.Errorf("generate transfer id: %w", err))
	}

	_, err = m.network.CreateTransfer(ctx, models.TransferRequest{
		ID:        id,
		ItemID:    itemID,
		Recipient: recipient,
		Payer:     payer,
		Amount:    amount,
	})
	if err != nil {
		return "", m.fail(fmt.Errorf("create transfer: %w", err))
	}

	m.mu.Lock()
	m.lastID = id
	m.lastErr = ""
	m.mu.Unlock()

	m.log.Info(ctx, "transfer created", "id", id, "item", itemID, "recipient", recipient)
	return id, nil
}

// PaymentStatus reports on any transfer; no wallet is required.
func (m *PaymentManager) PaymentStatus(ctx context.Context, id string) (models.PaymentStatus, error) {
	m.begin()
	defer m.end()

	st, err := m.network.TransferStatus(ctx, id)
	if err != nil {
		return models.PaymentStatus{}, m.fail(fmt.Errorf("status of %s: %w", id, err))
	}
	return st, nil
}

// CancelPayment stops an active transfer paid by the connected identity.
func (m *PaymentManager) CancelPayment(ctx context.Context, id string) error {
	payer, ok := m.identity.Address()
	if !ok {
		return m.fail(common.ErrNotConnected)
	}

	m.begin()
	defer m.end()

	if _, err := m.network.CancelTransfer(ctx, id, payer); err != nil {
		return m.fail(fmt.Errorf("cancel %s: %w", id, err))
	}

	m.mu.Lock()
	m.lastErr = ""
	m.mu.Unlock()

	m.log.Info(ctx, "transfer cancelled", "id", id)
	return nil
}

// ActiveStreams lists the active transfers paid by the connected identity.
// Without a wallet the list is empty.
func (m *PaymentManager) ActiveStreams(ctx context.Context) ([]models.Transfer, error) {
	payer, ok := m.identity.Address()
	if !ok {
		return []models.Transfer{}, nil
	}

	m.begin()
	defer m.end()

	list, err := m.network.ListActive(ctx, payer)
	if err != nil {
		return nil, m.fail(fmt.Errorf("list active: %w", err))
	}

	active := make([]models.Transfer, 0, len(list))
	for _, t := range list {
		if t.Active() {
			active = append(active, t)
		}
	}
	return active, nil
}

// History lists every transfer the connected identity paid or received.
func (m *PaymentManager) History(ctx context.Context) ([]models.Transfer, error) {
	identity, ok := m.identity.Address()
	if !ok {
		return []models.Transfer{}, nil
	}

	m.begin()
	defer m.end()

	list, err := m.network.History(ctx, identity)
	if err != nil {
		return nil, m.fail(fmt.Errorf("history: %w", err))
	}
	return list, nil
}

func (m *PaymentManager) begin() { m.inflight.Add(1) }
func (m *PaymentManager) end()   { m.inflight.Add(-1) }

func (m *PaymentManager) fail(err error) error {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	return err
}
