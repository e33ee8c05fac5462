package services

import (
	"context"
	"fmt"
	"time"

	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/redis/go-redis/v9"
)

type RedisTokenBlacklist struct {
	Client *redis.Client
}

// TokenBlacklist is the global instance
var TokenBlacklist *RedisTokenBlacklist

// NewTokenBlacklist creates a new Redis-backed token blacklist
func NewTokenBlacklist(redisURL string) (*RedisTokenBlacklist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisTokenBlacklist{Client: client}, nil
}

// BlacklistTokens adds both access and refresh tokens to the blacklist,
// keyed until their own expiry. A no-op when the blacklist is not
// configured, matching the fail-open lookup path.
func BlacklistTokens(accessToken, refreshToken string) error {
	if TokenBlacklist == nil {
		return nil
	}

	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		if err := TokenBlacklist.blacklist(token); err != nil {
			return err
		}
	}
	return nil
}

// IsTokenBlacklisted reports whether a token has been invalidated. Fails
// open when the blacklist is not configured.
func IsTokenBlacklisted(tokenString string) bool {
	if TokenBlacklist == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	exists, err := TokenBlacklist.Client.Exists(ctx, blacklistKey(tokenString)).Result()
	if err != nil {
		utils.TrackError("cache", "blacklist_lookup_failed")
		return false
	}
	return exists > 0
}

func (b *RedisTokenBlacklist) blacklist(tokenString string) error {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return fmt.Errorf("cannot blacklist invalid token: %v", err)
	}

	ttl := time.Hour
	if exp, ok := claims["exp"].(float64); ok {
		until := time.Until(time.Unix(int64(exp), 0))
		if until <= 0 {
			return nil // already expired, nothing to do
		}
		ttl = until
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.Client.Set(ctx, blacklistKey(tokenString), "1", ttl).Err(); err != nil {
		utils.TrackError("cache", "blacklist_set_failed")
		return fmt.Errorf("failed to blacklist token: %v", err)
	}
	return nil
}

func blacklistKey(tokenString string) string {
	// Hash-free keying is fine here; tokens are opaque and unique.
	return "blacklist:" + tokenString
}
