package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// ==========================
// Test Helper Functions
// ==========================

const testPrefix = "careerbot:session:"

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func createTestSession(id string) *models.Session {
	now := time.Now().UTC()
	sess := &models.Session{
		ID:        id,
		State:     models.StateAskingEmail,
		Facts:     models.UserFacts{models.FactName: "Asha"},
		Control:   models.ControlNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess.Append(models.NewMessage(models.SenderUser, "Asha"))
	return sess
}

// ==========================
// Memory Store Tests
// ==========================

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	sess := createTestSession("s1")
	require.NoError(t, store.Save(ctx, sess))

	sess.Facts[models.FactEmail] = "mutated@example.com"

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateAskingEmail, loaded.State)
	assert.NotContains(t, loaded.Facts, models.FactEmail)

	loaded.History[0].Text = "changed"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", again.History[0].Text)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	sess := createTestSession("old")
	sess.UpdatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Save(ctx, sess))

	_, err := store.Get(ctx, "old")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Save(ctx, createTestSession("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))
	assert.True(t, errors.Is(store.Delete(ctx, "s1"), apperrors.ErrSessionNotFound))
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	for _, id := range []string{"old1", "old2"} {
		sess := createTestSession(id)
		sess.UpdatedAt = time.Now().Add(-2 * time.Minute)
		require.NoError(t, store.Save(ctx, sess))
	}
	require.NoError(t, store.Save(ctx, createTestSession("fresh")))

	assert.Equal(t, 2, store.Sweep())
	assert.Equal(t, 1, store.Len())
	_, err := store.Get(ctx, "fresh")
	assert.NoError(t, err)
	assert.Equal(t, 0, store.Sweep())
}

func TestMemoryStore_RunSweeper(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := NewMemoryStore(10 * time.Millisecond)
	require.NoError(t, store.Save(context.Background(), createTestSession("s1")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunSweeper(ctx, 5*time.Millisecond, logger.NewTestLogger(t))
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

// ==========================
// Redis Store Tests
// ==========================

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := NewRedisStore(client, testPrefix, time.Hour)

	sess := createTestSession("abc")
	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists(testPrefix+"abc"))
	assert.Equal(t, time.Hour, mr.TTL(testPrefix+"abc"))

	loaded, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, sess.State, loaded.State)
	assert.Equal(t, sess.Facts, loaded.Facts)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "user-message", loaded.History[0].Class)

	require.NoError(t, store.Delete(ctx, "abc"))
	assert.False(t, mr.Exists(testPrefix+"abc"))
}

func TestRedisStore_ExpiredKey(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := NewRedisStore(client, testPrefix, time.Minute)

	require.NoError(t, store.Save(ctx, createTestSession("abc")))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "abc")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, "abc"), apperrors.ErrSessionNotFound))
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := NewRedisStore(client, testPrefix, time.Minute)

	require.NoError(t, mr.Set(testPrefix+"bad", "{not json"))

	_, err := store.Get(ctx, "bad")
	assert.True(t, errors.Is(err, apperrors.ErrSessionStore))
}

func TestRedisStore_ConnectionErrors(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, testPrefix, time.Hour)

	sess := createTestSession("abc")
	data, err := json.Marshal(sess)
	require.NoError(t, err)

	mock.ExpectGet(testPrefix + "abc").SetErr(errors.New("connection refused"))
	mock.ExpectSet(testPrefix+"abc", data, time.Hour).SetErr(errors.New("connection refused"))
	mock.ExpectDel(testPrefix + "abc").SetErr(errors.New("connection refused"))

	_, err = store.Get(ctx, "abc")
	assert.True(t, errors.Is(err, apperrors.ErrSessionStore))
	assert.True(t, apperrors.Normalize(err).Retryable)

	err = store.Save(ctx, sess)
	assert.True(t, errors.Is(err, apperrors.ErrSessionStore))

	err = store.Delete(ctx, "abc")
	assert.True(t, errors.Is(err, apperrors.ErrSessionStore))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ServiceIntegration(t *testing.T) {
	ctx := context.Background()
	_, client := setupMiniRedis(t)
	svc := createTestService(t, NewRedisStore(client, testPrefix, time.Hour))

	start, err := svc.Start(ctx)
	require.NoError(t, err)

	reply, err := svc.Send(ctx, start.Session.ID, "Meera")
	require.NoError(t, err)
	assert.Equal(t, models.StateAskingEmail, reply.Session.State)

	sess, err := svc.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera", sess.Facts[models.FactName])
}
