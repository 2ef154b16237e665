package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/metrics"
	"careerbot/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON documents under prefix+id. Every save
// refreshes the TTL, so the expiry counts from the last turn.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Backend() string { return "redis" }

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, s.fail("get", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, s.fail("decode", err)
	}
	if sess.Facts == nil {
		sess.Facts = models.UserFacts{}
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return s.fail("encode", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return s.fail("set", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return s.fail("del", err)
	}
	if n == 0 {
		return apperrors.NewSessionNotFoundError(id)
	}
	return nil
}

func (s *RedisStore) fail(op string, err error) error {
	metrics.SessionStoreErrors.WithLabelValues(s.Backend(), op).Inc()
	return apperrors.NewSessionStoreFailedError(op, err)
}
