package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedStatus struct {
	Suspended bool   `json:"suspended"`
	Message   string `json:"message"`
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_FetchesOnceThenServesFromCache(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()
	calls := 0

	fetch := func(dest *cachedStatus) func() error {
		return func() error {
			calls++
			*dest = cachedStatus{Suspended: true, Message: "account permanently suspended"}
			return nil
		}
	}

	var first cachedStatus
	require.NoError(t, Aside(ctx, SuspensionKey(3), &first, func() time.Duration { return time.Minute }, fetch(&first)))
	var second cachedStatus
	require.NoError(t, Aside(ctx, SuspensionKey(3), &second, func() time.Duration { return time.Minute }, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, mr.TTL("warden:suspension:3"))
}

func TestAside_NonPositiveTTLSkipsWrite(t *testing.T) {
	mr := useMiniredis(t)
	var dest cachedStatus
	err := Aside(context.Background(), SuspensionKey(4), &dest, func() time.Duration { return 0 }, func() error {
		dest.Message = "active"
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(SuspensionKey(4)))
}

func TestAside_FetchErrorPropagates(t *testing.T) {
	useMiniredis(t)
	boom := errors.New("db down")
	var dest cachedStatus
	err := Aside(context.Background(), "k", &dest, func() time.Duration { return time.Minute }, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	SetClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	t.Cleanup(func() { SetClient(nil) })

	var dest cachedStatus
	err := Aside(context.Background(), "k", &dest, func() time.Duration { return time.Minute }, func() error {
		dest.Message = "fresh"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", dest.Message)
}

func TestNilClientIsAlwaysAMiss(t *testing.T) {
	SetClient(nil)
	found, err := GetJSON(context.Background(), "k", &cachedStatus{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(context.Background(), "k", cachedStatus{}, time.Minute))
	Invalidate(context.Background(), "k")
}

func TestInvalidate(t *testing.T) {
	mr := useMiniredis(t)
	require.NoError(t, mr.Set(BannedTermsKey, "[]"))
	require.NoError(t, mr.Set(SuspensionKey(1), "{}"))

	Invalidate(context.Background(), BannedTermsKey, SuspensionKey(1))
	assert.False(t, mr.Exists(BannedTermsKey))
	assert.False(t, mr.Exists(SuspensionKey(1)))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("redis://%zz")
	assert.Error(t, err)

	rdb, err := NewClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, rdb.Options().DB)
	_ = rdb.Close()
}
