package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/domain"
)

// CatalogLoader loads question definitions stored as a JSONB array.
type CatalogLoader struct {
	pool *pgxpool.Pool
	id   string
}

func NewCatalogLoader(pool *pgxpool.Pool, id string) *CatalogLoader {
	return &CatalogLoader{pool: pool, id: id}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT questions FROM catalogs WHERE id=$1`, l.id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load catalog %s: %w", l.id, domain.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return catalog.New(questions)
}
