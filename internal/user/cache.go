package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
)

// RedisClient est le sous-ensemble de go-redis utilisé par le cache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedProfiles met en cache les profils d'un autre fournisseur.
// Une panne de Redis n'empêche pas la lecture : on retombe sur le fournisseur.
type CachedProfiles struct {
	next  ProfileProvider
	redis RedisClient
	ttl   time.Duration
}

func NewCachedProfiles(next ProfileProvider, client RedisClient, ttl time.Duration) *CachedProfiles {
	return &CachedProfiles{next: next, redis: client, ttl: ttl}
}

func profileKey(userID string) string    { return "profile:id:" + userID }
func usernameKey(username string) string { return "profile:username:" + username }

func (c *CachedProfiles) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	raw, err := c.redis.Get(ctx, profileKey(userID)).Bytes()
	if err == nil {
		var p Profile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logCacheError("get", err)
	}

	p, err := c.next.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.redis.Set(ctx, profileKey(userID), data, c.ttl).Err(); err != nil {
			logCacheError("set", err)
		}
	}
	return p, nil
}

func (c *CachedProfiles) ResolveUsername(ctx context.Context, username string) (string, error) {
	id, err := c.redis.Get(ctx, usernameKey(username)).Result()
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		logCacheError("get", err)
	}

	id, err = c.next.ResolveUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, usernameKey(username), id, c.ttl).Err(); err != nil {
		logCacheError("set", err)
	}
	return id, nil
}

func logCacheError(op string, err error) {
	logs.LogJSON("WARN", "Profile cache unavailable", map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	})
}
