package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/datamarket/internal/client/models"
	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/dmitrijs2005/datamarket/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, u *models.UploadRecord) error {
	query := `INSERT INTO uploads (cid, owner, title, category, price, file_name, file_size, dataset_id, uploaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(cid) DO UPDATE SET owner = excluded.owner,
				title = excluded.title,
				category = excluded.category,
				price = excluded.price,
				file_name = excluded.file_name,
				file_size = excluded.file_size,
				dataset_id = excluded.dataset_id,
				uploaded_at = excluded.uploaded_at`

	_, err := r.db.ExecContext(ctx, query, u.CID, u.Owner, u.Title, u.Category, u.Price, u.FileName, u.FileSize, u.DatasetID, u.UploadedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save upload %s: %w", u.CID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetDatasetID(ctx context.Context, cid, datasetID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE uploads SET dataset_id = ? WHERE cid = ?`, datasetID, cid)
	if err != nil {
		return fmt.Errorf("failed to update upload %s: %w", cid, err)
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

func (r *SQLiteRepository) Get(ctx context.Context, cid string) (*models.UploadRecord, error) {
	query := `SELECT cid, owner, title, category, price, file_name, file_size, dataset_id, uploaded_at
			FROM uploads WHERE cid = ?`

	u, err := scanUpload(r.db.QueryRowContext(ctx, query, cid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload %s: %w", cid, err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]*models.UploadRecord, error) {
	query := `SELECT cid, owner, title, category, price, file_name, file_size, dataset_id, uploaded_at
			FROM uploads WHERE owner = ? ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var out []*models.UploadRecord
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.UploadRecord, error) {
	var u models.UploadRecord
	err := s.Scan(&u.CID, &u.Owner, &u.Title, &u.Category, &u.Price, &u.FileName, &u.FileSize, &u.DatasetID, &u.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
