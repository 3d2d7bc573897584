package optionchain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"faopulse/internal/config"
	apperrors "faopulse/internal/errors"
)

// Store is the small key-value surface the option chain poller needs to keep
// its previous poll between requests. Get reports a miss through the found
// flag so callers can tell "no previous poll" from a storage fault.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// NewStore picks a backend from configuration: Redis when an address is
// configured and reachable, otherwise the in-memory fallback. Falling back is
// logged, never fatal, so a missing Redis only costs delta continuity across
// process restarts.
func NewStore(cfg config.RedisConfig, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		logger.Info("option chain store using in-memory backend")
		return NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, option chain store using in-memory backend",
			slog.String("addr", cfg.Addr),
			slog.String("error", err.Error()))
		client.Close()
		return NewMemoryStore()
	}

	logger.Info("option chain store connected to redis", slog.String("addr", cfg.Addr))
	return &RedisStore{client: client}
}

// RedisStore backs the poller state with Redis.
type RedisStore struct {
	client *redis.Client
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewStorageError("redis get failed", err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.NewStorageError("redis set failed", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is the process-local fallback backend. Entries honor their TTL
// on read; there is no background sweeper.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
