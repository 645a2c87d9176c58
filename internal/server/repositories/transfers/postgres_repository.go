package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/dbx"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

const selectColumns = `SELECT id, item_id, recipient, payer, amount, start_time, end_time, status FROM transfers`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) error {
	query := `INSERT INTO transfers (id, item_id, recipient, payer, amount, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ItemID, t.Recipient, t.Payer, t.Amount.String(), t.StartTime, t.EndTime, string(t.Status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Transfer, error) {
	return r.get(ctx, selectColumns+` WHERE id=$1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Transfer, error) {
	return r.get(ctx, selectColumns+` WHERE id=$1 FOR UPDATE`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (*models.Transfer, error) {
	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select transfer: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Finish(ctx context.Context, id string, status models.TransferStatus, at time.Time) error {
	if !models.TransferActive.CanTransition(status) {
		return common.ErrInvalidTransition
	}

	query := `UPDATE transfers SET status=$2, end_time=$3 WHERE id=$1 AND status='active'`
	res, err := r.db.ExecContext(ctx, query, id, string(status), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	// tell "no such transfer" from "already finished"
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return common.ErrInvalidTransition
}

func (r *PostgresRepository) ListActiveByPayer(ctx context.Context, payer string) ([]*models.Transfer, error) {
	return r.list(ctx, selectColumns+` WHERE payer=$1 AND status='active' ORDER BY start_time DESC`, payer)
}

func (r *PostgresRepository) ListByParty(ctx context.Context, identity string) ([]*models.Transfer, error) {
	return r.list(ctx, selectColumns+` WHERE payer=$1 OR recipient=$1 ORDER BY start_time DESC`, identity)
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipient string) ([]*models.Transfer, error) {
	return r.list(ctx, selectColumns+` WHERE recipient=$1 ORDER BY start_time DESC`, recipient)
}

func (r *PostgresRepository) ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]*models.Transfer, error) {
	return r.list(ctx, selectColumns+` WHERE status='active' AND start_time<$1 ORDER BY start_time`, cutoff.UTC())
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transfers: %w", err)
	}
	defer rows.Close()

	var result []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(s scanner) (*models.Transfer, error) {
	var (
		t      models.Transfer
		amount string
		status string
		end    sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.ItemID, &t.Recipient, &t.Payer, &amount, &t.StartTime, &end, &status); err != nil {
		return nil, err
	}

	a, err := big.FromString(amount)
	if err != nil {
		return nil, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	t.Amount = a
	t.Status = models.TransferStatus(status)
	if end.Valid {
		e := end.Time
		t.EndTime = &e
	}
	return &t, nil
}
