package apiclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/dog-directory/internal/pkg/log"
)

const (
	defaultRedisPrefix = "dogdir:"
	accessKey          = "access_token"
	refreshKey         = "refresh_token"
)

// RedisStore хранит пару токенов под двумя строковыми ключами:
// <prefix>access_token и <prefix>refresh_token.
// Set и Clear выполняются в MULTI/EXEC, поэтому частичная пара не наблюдаема.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "dogdir:".
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	const op = "apiclient.NewRedisStore"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewRedisStoreFromClient(rdb, prefix), nil
}

// NewRedisStoreFromClient оборачивает готовый клиент.
func NewRedisStoreFromClient(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) accessKey() string  { return s.prefix + accessKey }
func (s *RedisStore) refreshKey() string { return s.prefix + refreshKey }

func (s *RedisStore) Get(ctx context.Context) (TokenPair, bool) {
	vals, err := s.rdb.MGet(ctx, s.accessKey(), s.refreshKey()).Result()
	if err != nil {
		log.From(ctx).Warn("token_redis_read_failed", slog.String("err", err.Error()))
		return TokenPair{}, false
	}

	if len(vals) != 2 {
		return TokenPair{}, false
	}

	access, _ := vals[0].(string)
	refresh, _ := vals[1].(string)

	pair := TokenPair{AccessToken: access, RefreshToken: refresh}
	if !pair.Complete() {
		return TokenPair{}, false
	}

	return pair, true
}

func (s *RedisStore) Set(ctx context.Context, pair TokenPair) error {
	const op = "apiclient.RedisStore.Set"

	if !pair.Complete() {
		return fmt.Errorf("%s: %w", op, ErrPartialPair)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.accessKey(), pair.AccessToken, 0)
		pipe.Set(ctx, s.refreshKey(), pair.RefreshToken, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	const op = "apiclient.RedisStore.Clear"

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.accessKey())
		pipe.Del(ctx, s.refreshKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ CredentialStore = (*RedisStore)(nil)
