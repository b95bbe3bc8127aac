package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
)

// SessionStore keeps sessions as Redis hashes that expire with the session.
// A set per user lists the user's session ids so they can be revoked together.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(userID string) string {
	return "user_sessions:" + userID
}

func (s *SessionStore) Save(ctx context.Context, sess *entity.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	key := sessionKey(sess.ID)
	fields := map[string]any{
		"user_id":    sess.UserID,
		"csrf":       sess.CSRFToken,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": strconv.FormatInt(sess.ExpiresAt.Unix(), 10),
	}
	userKey := userSessionsKey(sess.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	pipe.SAdd(ctx, userKey, sess.ID)
	// sessions share one TTL, so the newest session outlives the others
	pipe.Expire(ctx, userKey, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return nil, nil
	}
	data, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data["user_id"] == "" {
		return nil, nil
	}
	sess := &entity.Session{ID: id, UserID: data["user_id"], CSRFToken: data["csrf"]}
	if t, err := time.Parse(time.RFC3339Nano, data["created_at"]); err == nil {
		sess.CreatedAt = t
	}
	if unix, err := strconv.ParseInt(data["expires_at"], 10, 64); err == nil {
		sess.ExpiresAt = time.Unix(unix, 0).UTC()
	}
	return sess, nil
}

// Delete is idempotent.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	key := sessionKey(id)
	userID, err := s.rdb.HGet(ctx, key, "user_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if userID != "" {
		pipe.SRem(ctx, userSessionsKey(userID), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteByUser ends every session of userID. Ids of sessions that already
// expired are dropped along the way.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	userKey := userSessionsKey(userID)
	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey)
	return s.rdb.Del(ctx, keys...).Err()
}
