package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

const sessionKeyTpl = "session:%s" // session:${sid}

// SessionStore keeps server-side login records; the browser only ever holds
// an opaque session id.
type SessionStore interface {
	Create(ctx context.Context, identity *Identity) (string, error)
	Get(ctx context.Context, sid string) (*Identity, error)
	Delete(ctx context.Context, sid string) error
	Close() error
}

func generateSessionID() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(randomBytes), nil
}

// NewSessionStore picks redis when a URL is configured, otherwise an
// in-process store good enough for development and tests.
func NewSessionStore(config *Config) (SessionStore, error) {
	ttl := time.Duration(config.Auth.SessionTTLHours) * time.Hour

	if config.Auth.RedisURL == "" {
		logger.Debug.Println("No redis URL configured, using in-memory sessions")
		return NewMemorySessions(ttl), nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSessions{redis: client, ttl: ttl}, nil
}

type RedisSessions struct {
	redis *redis.Client
	ttl   time.Duration
}

func (s *RedisSessions) Create(ctx context.Context, identity *Identity) (string, error) {
	sid, err := generateSessionID()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(sessionKeyTpl, sid)

	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"subject": identity.Subject,
		"email":   identity.Email,
		"name":    identity.Name,
		"picture": identity.Picture,
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return sid, nil
}

func (s *RedisSessions) Get(ctx context.Context, sid string) (*Identity, error) {
	key := fmt.Sprintf(sessionKeyTpl, sid)

	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return &Identity{
		Subject: fields["subject"],
		Email:   fields["email"],
		Name:    fields["name"],
		Picture: fields["picture"],
	}, nil
}

func (s *RedisSessions) Delete(ctx context.Context, sid string) error {
	key := fmt.Sprintf(sessionKeyTpl, sid)
	return s.redis.Del(ctx, key).Err()
}

func (s *RedisSessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

type memorySession struct {
	identity Identity
	expires  time.Time
}

type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
	}
}

func (s *MemorySessions) Create(_ context.Context, identity *Identity) (string, error) {
	sid, err := generateSessionID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = memorySession{
		identity: *identity,
		expires:  time.Now().Add(s.ttl),
	}

	return sid, nil
}

func (s *MemorySessions) Get(_ context.Context, sid string) (*Identity, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sid]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(sess.expires) {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		return nil, nil
	}

	identity := sess.identity
	return &identity, nil
}

func (s *MemorySessions) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *MemorySessions) Close() error {
	return nil
}
