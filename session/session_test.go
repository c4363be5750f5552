package session_test

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_lab_inventory/session"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var alice = workflow.Identity{SubjectID: "A101", Role: workflow.RoleStudent, TeamNumber: "IPA001"}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := session.NewStore(rdb, time.Hour)

	token, sess, err := s.Create(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, sess.IssuedAt+3600, sess.ExpiresAt)
	assert.True(t, mr.Exists("lab:sess:"+token))

	got, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice, got.Identity)

	require.NoError(t, s.Delete(ctx, token))
	_, err = s.Get(ctx, token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := session.NewStore(rdb, time.Minute)

	token, _, err := s.Create(ctx, alice)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = s.Get(ctx, token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStoreRejectsBadIdentity(t *testing.T) {
	_, rdb := newRedis(t)
	s := session.NewStore(rdb, time.Minute)

	_, _, err := s.Create(context.Background(), workflow.Identity{Role: workflow.RoleAdmin})
	assert.Error(t, err)
	_, _, err = s.Create(context.Background(), workflow.Identity{SubjectID: "x", Role: "guest"})
	assert.Error(t, err)
	_, err = s.Get(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRevokeAllForSubject(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	s := session.NewStore(rdb, time.Hour)

	t1, _, err := s.Create(ctx, alice)
	require.NoError(t, err)
	t2, _, err := s.Create(ctx, alice)
	require.NoError(t, err)
	other, _, err := s.Create(ctx, workflow.Identity{SubjectID: "hema", Role: workflow.RoleInstructor})
	require.NoError(t, err)

	require.NoError(t, s.RevokeAllForSubject(ctx, "A101"))
	for _, tok := range []string{t1, t2} {
		_, err := s.Get(ctx, tok)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	}
	_, err = s.Get(ctx, other)
	assert.NoError(t, err)

	// 没有会话的 subject 也不报错
	assert.NoError(t, s.RevokeAllForSubject(ctx, "nobody"))
}

func TestRevokeReachesLongerSession(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	long := session.NewStore(rdb, 720*time.Hour)
	short := session.NewStore(rdb, 24*time.Hour)

	longTok, _, err := long.Create(ctx, alice)
	require.NoError(t, err)
	_, _, err = short.Create(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, mr.TTL("lab:subject_sessions:A101"))

	mr.FastForward(25 * time.Hour)
	require.NoError(t, long.RevokeAllForSubject(ctx, "A101"))
	_, err = long.Get(ctx, longTok)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestThrottle(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	th := session.NewThrottle(rdb, "lab:seen:", 5*time.Minute)

	assert.True(t, th.Allow(ctx, "A101"))
	assert.False(t, th.Allow(ctx, "A101"))
	assert.True(t, th.Allow(ctx, "A102"))

	mr.FastForward(6 * time.Minute)
	assert.True(t, th.Allow(ctx, "A101"))

	assert.True(t, session.NewThrottle(rdb, "x:", 0).Allow(ctx, "any"))
}
