package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"warden/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(testEventuallyTimeout):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_RegisterLimits(t *testing.T) {
	hub := NewHub("admin feed")
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	other, err := hub.Register(2, nil)
	require.NoError(t, err)
	assert.Equal(t, maxConnsPerUser+1, hub.Count())

	hub.UnregisterClient(other)
	hub.UnregisterClient(other)
	assert.Equal(t, maxConnsPerUser, hub.Count())
}

func TestHub_BroadcastRouting(t *testing.T) {
	hub := NewHub("user notices")
	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "only-a")
	assert.Equal(t, "only-a", string(receive(t, a)))
	assert.Empty(t, b.Send)

	hub.BroadcastAll("everyone")
	assert.Equal(t, "everyone", string(receive(t, a)))
	assert.Equal(t, "everyone", string(receive(t, b)))
}

func TestHub_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub("admin feed")
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)
	assert.Equal(t, int64(5), c.Dropped())
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub("admin feed")
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, ok := <-c.Send
	assert.False(t, ok, "shutdown closes client send channels")
	assert.Zero(t, hub.Count())

	// Broadcasting to a closed client must not panic.
	c.TrySend([]byte("late"))

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_AdminWiring(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(rdb)
	hub := NewHub("admin feed")
	require.NoError(t, hub.StartAdminWiring(ctx, d))
	admin, err := hub.Register(99, nil)
	require.NoError(t, err)

	require.NoError(t, d.PublishAdminEvent(ctx, models.AdminEvent{
		Type:    models.EventContentConcealed,
		Payload: map[string]any{"target": "post:1"},
	}))

	var event models.AdminEvent
	require.NoError(t, json.Unmarshal(receive(t, admin), &event))
	assert.Equal(t, models.EventContentConcealed, event.Type)
	assert.Equal(t, "post:1", event.Payload["target"])
	assert.False(t, event.At.IsZero())
}

func TestHub_UserWiring(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(rdb)
	hub := NewHub("user notices")
	require.NoError(t, hub.StartUserWiring(ctx, d))
	mine, err := hub.Register(5, nil)
	require.NoError(t, err)
	theirs, err := hub.Register(6, nil)
	require.NoError(t, err)

	require.NoError(t, d.NotifyUser(ctx, 5, models.Notice{Type: models.NoticePenaltyIssued, Message: "you have been warned"}))

	var notice models.Notice
	require.NoError(t, json.Unmarshal(receive(t, mine), &notice))
	assert.Equal(t, models.NoticePenaltyIssued, notice.Type)
	assert.Equal(t, "you have been warned", notice.Message)

	assert.Never(t, func() bool { return len(theirs.Send) > 0 }, 10*testPollInterval, testPollInterval)
}
