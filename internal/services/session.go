package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// LoginTokenDuration bounds how long a minted login token stays
	// exchangeable for a session
	LoginTokenDuration = 5 * time.Minute

	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_session:"
	loginTokenKeyPrefix  = "login_token:"
)

// tokenStore is the minimal key/value surface the session layer needs.
// Production is Redis; tests substitute an in-memory store.
type tokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	GetDel(ctx context.Context, key string) (string, error)
}

type redisTokenStore struct {
	rdb *redis.Client
}

func (s redisTokenStore) Get(ctx context.Context, key string) (string, error) {
	return s.rdb.Get(ctx, key).Result()
}

func (s redisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s redisTokenStore) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s redisTokenStore) GetDel(ctx context.Context, key string) (string, error) {
	return s.rdb.GetDel(ctx, key).Result()
}

// SessionService manages Redis-backed session tokens. A session token is the
// only credential the record APIs accept; the user ID it resolves to is the
// stable identity string scoping every persisted record.
type SessionService struct {
	store tokenStore
}

func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{store: redisTokenStore{rdb: rdb}}
}

// Create issues a new session for a user. Any existing session for the same
// user is invalidated first so the 7-day timer always restarts at login.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	s.InvalidateUserSessions(ctx, userID)

	token, err := randomToken()
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, sessionKeyPrefix+token, userID.String(), SessionDuration); err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, userSessionKeyPrefix+userID.String(), token, SessionDuration); err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks a session token and returns the user it belongs to.
func (s *SessionService) Validate(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if token == "" {
		return uuid.Nil, false, nil
	}

	userIDStr, err := s.store.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return uuid.Nil, false, nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

// Invalidate removes a session.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	userIDStr, err := s.store.Get(ctx, sessionKeyPrefix+token)
	if err == nil && userIDStr != "" {
		s.store.Del(ctx, userSessionKeyPrefix+userIDStr)
	}
	return s.store.Del(ctx, sessionKeyPrefix+token)
}

// InvalidateUserSessions drops the user's live session, if any.
func (s *SessionService) InvalidateUserSessions(ctx context.Context, userID uuid.UUID) error {
	userSessionKey := userSessionKeyPrefix + userID.String()

	token, err := s.store.Get(ctx, userSessionKey)
	if err == nil && token != "" {
		s.store.Del(ctx, sessionKeyPrefix+token)
	}
	return s.store.Del(ctx, userSessionKey)
}

// MintLoginToken issues a short-lived one-shot token a signed-in client can
// hand to the session endpoint (for example from another tab or device).
func (s *SessionService) MintLoginToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, loginTokenKeyPrefix+token, userID.String(), LoginTokenDuration); err != nil {
		return "", err
	}
	return token, nil
}

// ExchangeLoginToken resolves and consumes a login token. A miss is not an
// error: the caller falls back to anonymous session creation.
func (s *SessionService) ExchangeLoginToken(ctx context.Context, token string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}

	userIDStr, err := s.store.GetDel(ctx, loginTokenKeyPrefix+token)
	if err != nil {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func randomToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}
