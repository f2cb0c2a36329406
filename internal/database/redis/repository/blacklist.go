package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"joingo/internal/core"
	client "joingo/internal/database/client"
	"joingo/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklistRepository 記錄已登出但尚未過期的 bearer token
type TokenBlacklistRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewTokenBlacklistRepository(trace *telemetry.Trace, client *client.RedisClient) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{trace: trace, client: client.Client()}
}

// Add 以 token 剩餘效期作為 TTL；ttl <= 0 代表已過期，不需記錄
func (repository *TokenBlacklistRepository) Add(ctx context.Context, token string, ttl time.Duration) (err error) {
	ctx, _, end := repository.trace.WithSpan(ctx)
	defer func() { end(err) }()

	if ttl <= 0 {
		return nil
	}
	return repository.client.Set(ctx, repository.buildKey(token), 1, ttl).Err()
}

func (repository *TokenBlacklistRepository) Contains(ctx context.Context, token string) (found bool, err error) {
	ctx, _, end := repository.trace.WithSpan(ctx)
	defer func() { end(err) }()

	n, err := repository.client.Exists(ctx, repository.buildKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// buildKey 只存 token 雜湊
func (repository *TokenBlacklistRepository) buildKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%s:%s:%s", core.RedisKeyServerName, core.RedisKeyBlacklist, hex.EncodeToString(sum[:]))
}
