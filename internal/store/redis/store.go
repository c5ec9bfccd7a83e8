package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/rollcall/internal/models"
	"github.com/shrimpsizemoose/rollcall/internal/store"
)

const snapshotKeyTpl = "rollcall:%s" // rollcall:${name}

// RedisStore keeps each snapshot as a single JSON string value.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ApplyMigrations is a no-op: redis has no schema.
func (s *RedisStore) ApplyMigrations(dir string) error {
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*models.Snapshot, error) {
	payload, err := s.client.Get(ctx, fmt.Sprintf(snapshotKeyTpl, name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", name, err)
	}
	return store.Decode(payload)
}

func (s *RedisStore) Save(ctx context.Context, name string, snapshot *models.Snapshot) error {
	payload, err := store.Encode(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, fmt.Sprintf(snapshotKeyTpl, name), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}
	return nil
}
