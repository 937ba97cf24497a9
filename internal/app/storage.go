package app

import "context"

// Storage abstracts durable local storage of named records (sqlite, Redis, Postgres, in-memory).
// Save must replace the record atomically: a reader sees the old bytes or the new bytes, never a mix.
// Load returns domain.ErrRecordNotFound for an absent record.
type Storage interface {
	Load(ctx context.Context, record string) ([]byte, error)
	Save(ctx context.Context, record string, data []byte) error
	Delete(ctx context.Context, record string) error
}
