package contents

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
	domain "github.com/dmitrijs2005/datamarket/internal/models"
	"github.com/dmitrijs2005/datamarket/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Content) error {
	query := `INSERT INTO contents (cid, owner, size, storage_key, stored_at,
			title, description, category, price, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	m := c.Metadata
	_, err := r.db.ExecContext(ctx, query,
		c.CID, c.Owner, c.Size, c.StorageKey, c.StoredAt,
		m.Title, m.Description, string(m.Category), m.Price.String(), m.FileName, m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, cid string) (*models.Content, error) {
	query := `SELECT cid, owner, size, storage_key, stored_at,
			title, description, category, price, file_name, created_at
		FROM contents WHERE cid=$1`

	var (
		c        models.Content
		category string
		price    string
	)
	err := r.db.QueryRowContext(ctx, query, cid).Scan(
		&c.CID, &c.Owner, &c.Size, &c.StorageKey, &c.StoredAt,
		&c.Metadata.Title, &c.Metadata.Description, &category, &price, &c.Metadata.FileName, &c.Metadata.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select content: %w", err)
	}

	p, err := big.FromString(price)
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", price, err)
	}
	c.Metadata.Price = p
	c.Metadata.Category = domain.Category(category)
	c.Metadata.FileSize = c.Size
	return &c, nil
}
