package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore issues and consumes single-use password reset tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

type RedisTokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "pwreset:",
		ttl:    30 * time.Minute,
	}
}

func (r *RedisTokenStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("credentials: failed to generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	if err := r.client.Set(ctx, r.key(token), userID, r.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, r.key(token)).Result()
	if err == redis.Nil {
		return "", ErrInvalidResetToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
