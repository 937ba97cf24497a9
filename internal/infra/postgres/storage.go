package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-quiz/internal/domain"
)

// Storage keeps records in the quiz_records table. Each Save is a single UPSERT.
type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Load(ctx context.Context, record string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quiz_records WHERE name=$1`, record).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", record, err)
	}
	return raw, nil
}

func (s *Storage) Save(ctx context.Context, record string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_records (name, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		record, data)
	if err != nil {
		return fmt.Errorf("save %s: %w", record, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, record string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM quiz_records WHERE name=$1`, record); err != nil {
		return fmt.Errorf("delete %s: %w", record, err)
	}
	return nil
}
