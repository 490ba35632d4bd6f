package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionTTL is the sliding idle timeout. Every handled request
	// extends it, so only abandoned sessions age out.
	SessionTTL = time.Hour

	// SessionCookie is the fixed cookie name. The Snap client parses it
	// by name, so it cannot change.
	SessionCookie = "snapcloud"
)

// Session is the per-token state held in Redis. A session with no bound
// user is anonymous and must be rejected by authenticated operations.
type Session struct {
	Token string `json:"-"`
	User  string `json:"user,omitempty"`
}

// Authenticated reports whether a user is bound to the session.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != ""
}

// SessionStore is the durable token -> session mapping. Load returns
// (nil, nil) for an absent or expired token. Writes are last-write-wins
// per token; there is no compare-and-swap.
type SessionStore interface {
	Load(ctx context.Context, token string) (*Session, error)
	Create(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Touch(ctx context.Context, token string) error
	Destroy(ctx context.Context, token string) error
}

// RedisSessionStore keeps sessions under "session:<token>" with a TTL so
// idle sessions expire server-side.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) key(token string) string {
	return "session:" + token
}

func (s *RedisSessionStore) Load(ctx context.Context, token string) (*Session, error) {
	val, err := s.rdb.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess := &Session{Token: token}
	if err := json.Unmarshal([]byte(val), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisSessionStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{Token: uuid.NewString()}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(sess.Token), val, SessionTTL).Err()
}

// Touch extends the TTL without rewriting the value (resave semantics:
// every handled request calls this).
func (s *RedisSessionStore) Touch(ctx context.Context, token string) error {
	return s.rdb.Expire(ctx, s.key(token), SessionTTL).Err()
}

func (s *RedisSessionStore) Destroy(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.key(token)).Err()
}
