package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wellness-quiz/internal/domain"
)

// Storage keeps records as plain string values under "{prefix}:{record}".
// A SET replaces the whole value, so readers never see a partial record.
// A zero ttl keeps records until they are deleted.
type Storage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStorage(client *redis.Client, prefix string, ttl time.Duration) *Storage {
	if prefix == "" {
		prefix = "wellness"
	}
	return &Storage{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Storage) Load(ctx context.Context, record string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(record)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", record, err)
	}
	return data, nil
}

func (s *Storage) Save(ctx context.Context, record string, data []byte) error {
	if err := s.client.Set(ctx, s.key(record), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", record, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, record string) error {
	if err := s.client.Del(ctx, s.key(record)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", record, err)
	}
	return nil
}

func (s *Storage) key(record string) string {
	return s.prefix + ":" + record
}
