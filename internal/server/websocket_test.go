package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warden/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startLiveServer serves env.app on a real listener with the feeds wired to
// miniredis and returns the ws:// base URL.
func startLiveServer(t *testing.T) (*testEnv, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, rdb)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, env.server.startWiring(ctx))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()

	t.Cleanup(func() {
		cancel()
		_ = env.server.adminHub.Shutdown(context.Background())
		_ = env.server.noticeHub.Shutdown(context.Background())
		_ = env.app.Shutdown()
	})
	return env, "ws://" + ln.Addr().String()
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestLiveFeeds_PenaltyFansOut(t *testing.T) {
	env, base := startLiveServer(t)

	adminConn := dial(t, base+"/api/admin/ws?token="+token(t, adminID, true))
	userConn := dial(t, base+"/api/me/ws?token="+token(t, author, false))

	require.Eventually(t, func() bool {
		return env.server.adminHub.Count() == 1 && env.server.noticeHub.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	status, body := env.call(t, http.MethodPost, "/api/admin/users/10/penalties", adminID,
		IssuePenaltyRequest{Type: "warning", Reason: "please keep it civil"})
	require.Equal(t, http.StatusCreated, status, body)

	event := readJSON(t, adminConn)
	assert.Equal(t, models.EventPenaltyIssued, event["type"])

	notice := readJSON(t, userConn)
	assert.Equal(t, models.NoticePenaltyIssued, notice["type"])
	assert.NotEmpty(t, notice["message"])
}

func TestLiveFeeds_NoticesAreScopedToRecipient(t *testing.T) {
	env, base := startLiveServer(t)

	other := dial(t, base+"/api/me/ws?token="+token(t, reporterA, false))
	target := dial(t, base+"/api/me/ws?token="+token(t, author, false))
	require.Eventually(t, func() bool {
		return env.server.noticeHub.Count() == 2
	}, 2*time.Second, 10*time.Millisecond)

	status, _ := env.call(t, http.MethodPost, "/api/admin/users/10/penalties", adminID,
		IssuePenaltyRequest{Type: "24h", Reason: "cooling off"})
	require.Equal(t, http.StatusCreated, status)

	notice := readJSON(t, target)
	assert.Equal(t, models.NoticePenaltyIssued, notice["type"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestAdminFeed_RejectsMembers(t *testing.T) {
	_, base := startLiveServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/api/admin/ws?token="+token(t, author, false), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp2, err := websocket.DefaultDialer.Dial(base+"/api/me/ws", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp2)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestFeedHandler_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ws?token="+token(t, adminID, true), nil)
	status, _ := env.do(t, req)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
