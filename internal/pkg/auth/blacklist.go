package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"coursehub/pkg/cache"
)

// TokenBlacklist remembers logged-out tokens until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type cacheBlacklist struct {
	cache cache.CacheService
	now   func() time.Time
}

func NewTokenBlacklist(c cache.CacheService) TokenBlacklist {
	return &cacheBlacklist{cache: c, now: time.Now}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "jwt:revoked:" + hex.EncodeToString(sum[:])
}

func (b *cacheBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	return b.cache.Set(ctx, blacklistKey(token), true, ttl)
}

func (b *cacheBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, blacklistKey(token))
}
