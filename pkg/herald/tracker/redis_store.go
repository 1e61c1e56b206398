package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings of the Redis-backed store.
type RedisConfig struct {
	Addr      string        `json:"addr"`
	Password  string        `json:"password"`
	DB        int           `json:"db"`
	KeyPrefix string        `json:"key_prefix"`
	TTL       time.Duration `json:"ttl"`
}

// DefaultRedisConfig returns the default Redis store configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "herald:delivery",
		TTL:       7 * 24 * time.Hour,
	}
}

// RedisStore persists delivery records as JSON values in Redis, giving
// delivery history that survives orchestrator restarts.
type RedisStore struct {
	client *redis.Client
	config *RedisConfig
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tracker: redis connect: %w", err)
	}
	return &RedisStore{client: client, config: config}, nil
}

// NewRedisStoreWithClient wraps an existing client, for callers that share a
// connection pool.
func NewRedisStoreWithClient(client *redis.Client, config *RedisConfig) *RedisStore {
	if config == nil {
		config = DefaultRedisConfig()
	}
	return &RedisStore{client: client, config: config}
}

func (s *RedisStore) key(requestID string) string {
	return s.config.KeyPrefix + ":" + requestID
}

// Save writes the record as JSON under its request-ID key.
func (s *RedisStore) Save(ctx context.Context, record *DeliveryRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("tracker: encode record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(record.RequestID), payload, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("tracker: redis set: %w", err)
	}
	return nil
}

// Load reads and decodes the record for the given request ID.
func (s *RedisStore) Load(ctx context.Context, requestID string) (*DeliveryRecord, error) {
	payload, err := s.client.Get(ctx, s.key(requestID)).Bytes()
	if err == redis.Nil {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tracker: redis get: %w", err)
	}
	var record DeliveryRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("tracker: decode record: %w", err)
	}
	return &record, nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
