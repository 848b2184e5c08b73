package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-webauthn/webauthn/webauthn"
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

func TestAppSessionLifecycle(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	s := NewAppSessionStore(rdb, time.Hour)

	require.NoError(t, s.Create(ctx, "s1", "u1"))
	require.NoError(t, s.Create(ctx, "s2", "u1"))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, got.IssuedAt+3600, got.ExpiresAt)
	assert.Equal(t, time.Hour, mr.TTL("app:sess:s1"))

	members, err := mr.Members("app:user_sessions:u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, members)

	require.NoError(t, s.Delete(ctx, "s1"))
	_, err = s.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoSession)

	members, err = mr.Members("app:user_sessions:u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, members)
}

func TestAppSessionExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	s := NewAppSessionStore(rdb, time.Minute)

	require.NoError(t, s.Create(ctx, "s1", "u1"))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeAllForUser(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	s := NewAppSessionStore(rdb, time.Hour)

	require.NoError(t, s.Create(ctx, "a", "u1"))
	require.NoError(t, s.Create(ctx, "b", "u1"))
	require.NoError(t, s.Create(ctx, "c", "u2"))

	require.NoError(t, s.RevokeAllForUser(ctx, "u1"))

	assert.False(t, mr.Exists("app:sess:a"))
	assert.False(t, mr.Exists("app:sess:b"))
	assert.False(t, mr.Exists("app:user_sessions:u1"))
	_, err := s.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestCeremonyStore(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	s := NewStore(rdb, 5*time.Minute)

	sd := &webauthn.SessionData{Challenge: "abc", UserID: []byte("u1")}
	require.NoError(t, s.SaveRegByToken(ctx, "tok", sd))
	require.NoError(t, s.SaveAuth(ctx, "sid", sd))
	require.NoError(t, s.SaveReg(ctx, "clerk@shop.test", sd))

	got, err := s.LoadRegByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Challenge)
	assert.Equal(t, 5*time.Minute, mr.TTL("webauthn:reg:inv:tok"))

	s.DelRegByToken(ctx, "tok")
	_, err = s.LoadRegByToken(ctx, "tok")
	assert.Error(t, err)

	got, err = s.LoadAuth(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, []byte("u1"), got.UserID)
	s.DelAuth(ctx, "sid")
	assert.False(t, mr.Exists("webauthn:auth:sid"))

	_, err = s.LoadReg(ctx, "clerk@shop.test")
	require.NoError(t, err)
	s.DelReg(ctx, "clerk@shop.test")
	assert.False(t, mr.Exists("webauthn:reg:clerk@shop.test"))
}

func TestSubmitGate(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	g := NewSubmitGate(rdb, 30*time.Second)

	release, err := g.Acquire(ctx, "u1", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("app:submit:u1:tok-1"))

	_, err = g.Acquire(ctx, "u1", "tok-1")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	other, err := g.Acquire(ctx, "u2", "tok-1")
	require.NoError(t, err)
	other()

	release()
	again, err := g.Acquire(ctx, "u1", "tok-1")
	require.NoError(t, err)
	again()
}

func TestSubmitGateWithoutToken(t *testing.T) {
	_, rdb := newRedis(t)
	g := NewSubmitGate(rdb, time.Second)

	for i := 0; i < 2; i++ {
		release, err := g.Acquire(context.Background(), "u1", "")
		require.NoError(t, err)
		require.NotNil(t, release)
	}
}

func TestSubmitGateExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	g := NewSubmitGate(rdb, time.Second)

	_, err := g.Acquire(context.Background(), "u1", "t")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	_, err = g.Acquire(context.Background(), "u1", "t")
	assert.NoError(t, err)
}
