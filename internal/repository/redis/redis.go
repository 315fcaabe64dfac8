package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// TokenRepository keeps one key per issued token plus a per-user index so
// every session of a user can be revoked at once.
type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:token:%s", token)
}

func userIndexKey(userID string) string {
	return fmt.Sprintf("session:user:%s", userID)
}

func (r *TokenRepository) StoreToken(ctx context.Context, token string, session domain.Session, ttl time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(token), jsonData, ttl)
		pipe.SAdd(ctx, userIndexKey(session.UserID), token)
		pipe.Expire(ctx, userIndexKey(session.UserID), ttl)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to store session in Redis")
	}

	return nil
}

// ValidateToken returns the session stored for token.
func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (domain.Session, error) {
	val, err := r.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, errors.Wrap(err, "failed to validate token")
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return domain.Session{}, errors.Wrap(err, "failed to unmarshal session")
	}

	return session, nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(token))
		pipe.SRem(ctx, userIndexKey(userID), token)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}

// DeleteUserTokens revokes every live session of userID.
func (r *TokenRepository) DeleteUserTokens(ctx context.Context, userID string) error {
	tokens, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "failed to list sessions")
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, userIndexKey(userID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "failed to delete sessions")
	}

	return nil
}

func (r *TokenRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
