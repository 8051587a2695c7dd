package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errKeyMissing = errors.New("key missing")

// memoryTokenStore backs the session tests without a live Redis.
type memoryTokenStore struct {
	data map[string]string
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{data: make(map[string]string)}
}

func (m *memoryTokenStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", errKeyMissing
	}
	return v, nil
}

func (m *memoryTokenStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryTokenStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryTokenStore) GetDel(ctx context.Context, key string) (string, error) {
	v, err := m.Get(ctx, key)
	if err != nil {
		return "", err
	}
	delete(m.data, key)
	return v, nil
}

func newTestSessions() (*SessionService, *memoryTokenStore) {
	store := newMemoryTokenStore()
	return &SessionService{store: store}, store
}

func TestSessionCreateValidateRoundTrip(t *testing.T) {
	svc, _ := newTestSessions()
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, ok, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok, err = svc.Validate(ctx, "no-such-token")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.Validate(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionCreateInvalidatesPriorSession(t *testing.T) {
	svc, _ := newTestSessions()
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Only the newest session survives
	_, ok, err := svc.Validate(ctx, first)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := svc.Validate(ctx, second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestSessionInvalidateRemovesBothDirections(t *testing.T) {
	svc, store := newTestSessions()
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.Create(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, token))

	_, ok, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Both the token and the reverse user mapping are gone
	assert.NotContains(t, store.data, sessionKeyPrefix+token)
	assert.NotContains(t, store.data, userSessionKeyPrefix+userID.String())
}

func TestLoginTokenExchangeIsOneShot(t *testing.T) {
	svc, _ := newTestSessions()
	ctx := context.Background()
	userID := uuid.New()

	token, err := svc.MintLoginToken(ctx, userID)
	require.NoError(t, err)

	got, ok := svc.ExchangeLoginToken(ctx, token)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	// The token is consumed on exchange
	_, ok = svc.ExchangeLoginToken(ctx, token)
	assert.False(t, ok)
}

func TestLoginTokenExchangeMiss(t *testing.T) {
	svc, _ := newTestSessions()
	ctx := context.Background()

	// Stale or absent tokens report a miss, which the session endpoint turns
	// into a fresh anonymous identity
	_, ok := svc.ExchangeLoginToken(ctx, "long-gone")
	assert.False(t, ok)

	_, ok = svc.ExchangeLoginToken(ctx, "")
	assert.False(t, ok)
}
