package datasets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/dbx"
	"github.com/dmitrijs2005/datamarket/internal/models"
)

const selectColumns = `SELECT id, cid, title, description, category, price, seller,
		file_name, file_size, uploaded_at, views, sales FROM datasets`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Dataset) error {
	query := `INSERT INTO datasets (id, cid, title, description, category, price, seller,
			file_name, file_size, uploaded_at, views, sales)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.CID, d.Title, d.Description, string(d.Category), d.Price.String(), d.Seller,
		d.FileName, d.FileSize, d.UploadedAt, d.Views, d.Sales)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Dataset, error) {
	return r.get(ctx, selectColumns+` WHERE id=$1`, id)
}

func (r *PostgresRepository) GetByCID(ctx context.Context, cid string) (*models.Dataset, error) {
	return r.get(ctx, selectColumns+` WHERE cid=$1`, cid)
}

func (r *PostgresRepository) get(ctx context.Context, query, key string) (*models.Dataset, error) {
	d, err := scanDataset(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select dataset: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) List(ctx context.Context, category string) ([]*models.Dataset, error) {
	if category == "" {
		return r.list(ctx, selectColumns+` ORDER BY uploaded_at DESC`)
	}
	return r.list(ctx, selectColumns+` WHERE category=$1 ORDER BY uploaded_at DESC`, category)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, seller string) ([]*models.Dataset, error) {
	return r.list(ctx, selectColumns+` WHERE seller=$1 ORDER BY uploaded_at DESC`, seller)
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE datasets SET views = views + 1 WHERE id=$1`, id)
}

func (r *PostgresRepository) AddSales(ctx context.Context, id string, delta int64) error {
	return r.exec(ctx, `UPDATE datasets SET sales = GREATEST(sales + $2, 0) WHERE id=$1`, id, delta)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Dataset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select datasets: %w", err)
	}
	defer rows.Close()

	var result []*models.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDataset(s scanner) (*models.Dataset, error) {
	var (
		d        models.Dataset
		category string
		price    string
	)
	err := s.Scan(&d.ID, &d.CID, &d.Title, &d.Description, &category, &price, &d.Seller,
		&d.FileName, &d.FileSize, &d.UploadedAt, &d.Views, &d.Sales)
	if err != nil {
		return nil, err
	}

	p, err := big.FromString(price)
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", price, err)
	}
	d.Price = p
	d.Category = models.Category(category)
	return &d, nil
}
