package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/dbx"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/models"
	"github.com/dmitrijs2005/datamarket/internal/server/metrics"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/repomanager"
)

// PaymentService is the payment network. Transfers open as active and end
// exactly once, either cancelled by the payer or completed by settlement.
type PaymentService struct {
	repomanager    repomanager.RepositoryManager
	metrics        metrics.Recorder
	logger         logging.Logger
	streamDuration time.Duration
	now            func() time.Time
}

func NewPaymentService(m repomanager.RepositoryManager, rec metrics.Recorder, l logging.Logger, streamDuration time.Duration) *PaymentService {
	return &PaymentService{
		repomanager:    m,
		metrics:        rec,
		logger:         l.With("module", "payment"),
		streamDuration: streamDuration,
		now:            time.Now,
	}
}

// Create opens an active transfer. An empty req.ID gets a generated one.
// When ItemID names a listing its sales counter is bumped in the same
// transaction.
func (s *PaymentService) Create(ctx context.Context, req models.TransferRequest) (models.Transfer, error) {
	if req.Amount.Int == nil || req.Amount.Sign() <= 0 {
		return models.Transfer{}, fmt.Errorf("%w: amount must be positive", common.ErrInvalidAmount)
	}
	if req.ItemID == "" {
		return models.Transfer{}, fmt.Errorf("%w: item id is required", common.ErrInvalidRequest)
	}

	payer, err := models.CanonicalIdentity(req.Payer)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("payer: %w", err)
	}
	recipient, err := models.CanonicalIdentity(req.Recipient)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("recipient: %w", err)
	}
	if models.SameAddress(payer, recipient) {
		return models.Transfer{}, fmt.Errorf("%w: payer and recipient are the same account", common.ErrInvalidAddress)
	}

	id := req.ID
	if id == "" {
		id, err = common.NewTransferID()
		if err != nil {
			return models.Transfer{}, err
		}
	}

	t := models.Transfer{
		ID:        id,
		ItemID:    req.ItemID,
		Recipient: recipient,
		Payer:     payer,
		Amount:    req.Amount,
		StartTime: s.now().UTC(),
		Status:    models.TransferActive,
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Transfers(tx).Create(ctx, &t); err != nil {
			return err
		}
		return s.adjustSales(ctx, tx, t.ItemID, 1)
	})
	if err != nil {
		return models.Transfer{}, err
	}

	s.metrics.RecordTransferCreated()
	s.logger.Info(ctx, "transfer created", "id", t.ID, "item", t.ItemID, "payer", payer, "amount", t.Amount.String())
	return t, nil
}

func (s *PaymentService) adjustSales(ctx context.Context, tx dbx.DBTX, itemID string, delta int64) error {
	err := s.repomanager.Datasets(tx).AddSales(ctx, itemID, delta)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (s *PaymentService) Status(ctx context.Context, id string) (models.PaymentStatus, error) {
	t, err := s.repomanager.Transfers(s.repomanager.DB()).Get(ctx, id)
	if err != nil {
		return models.PaymentStatus{}, err
	}
	return t.Snapshot(), nil
}

// Cancel ends an active transfer on behalf of its payer.
func (s *PaymentService) Cancel(ctx context.Context, id, payer string) (models.Transfer, error) {
	var out models.Transfer

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Transfers(tx)

		t, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !models.SameAddress(t.Payer, payer) {
			return fmt.Errorf("%w: only the payer may cancel %s", common.ErrForbidden, id)
		}

		at := s.now().UTC()
		if !t.Finish(models.TransferCancelled, at) {
			return fmt.Errorf("%w: %s is %s", common.ErrInvalidTransition, id, t.Status)
		}
		if err := repo.Finish(ctx, id, models.TransferCancelled, at); err != nil {
			return err
		}
		if err := s.adjustSales(ctx, tx, t.ItemID, -1); err != nil {
			return err
		}

		out = *t
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}

	s.metrics.RecordTransferCancelled()
	s.logger.Info(ctx, "transfer cancelled", "id", id)
	return out, nil
}

// ListActive returns payer's active transfers, newest first.
func (s *PaymentService) ListActive(ctx context.Context, payer string) ([]models.Transfer, error) {
	p, err := models.CanonicalIdentity(payer)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Transfers(s.repomanager.DB()).ListActiveByPayer(ctx, p)
	if err != nil {
		return nil, err
	}
	return derefTransfers(list), nil
}

// History returns every transfer identity took part in, newest first.
func (s *PaymentService) History(ctx context.Context, identity string) ([]models.Transfer, error) {
	id, err := models.CanonicalIdentity(identity)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Transfers(s.repomanager.DB()).ListByParty(ctx, id)
	if err != nil {
		return nil, err
	}
	return derefTransfers(list), nil
}

// SettleExpired completes every active transfer that started more than
// the stream duration ago. A transfer cancelled concurrently is skipped.
func (s *PaymentService) SettleExpired(ctx context.Context) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.streamDuration)

	due, err := s.repomanager.Transfers(s.repomanager.DB()).ListActiveStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, t := range due {
		err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			return s.repomanager.Transfers(tx).Finish(ctx, t.ID, models.TransferCompleted, now)
		})
		switch {
		case err == nil:
			settled++
		case errors.Is(err, common.ErrInvalidTransition), errors.Is(err, common.ErrorNotFound):
			s.logger.Debug(ctx, "transfer no longer active", "id", t.ID)
		default:
			return settled, fmt.Errorf("settle %s: %w", t.ID, err)
		}
	}

	if settled > 0 {
		s.metrics.RecordTransfersCompleted(settled)
		s.logger.Info(ctx, "transfers settled", "count", settled)
	}
	return settled, nil
}

func derefTransfers(in []*models.Transfer) []models.Transfer {
	out := make([]models.Transfer, 0, len(in))
	for _, t := range in {
		out = append(out, *t)
	}
	return out
}
