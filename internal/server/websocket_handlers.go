package server

import (
	"context"
	"log/slog"

	"warden/internal/middleware"
	"warden/internal/notifications"
	"warden/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// AdminFeedHandler streams every moderation event to connected administrators.
// @Summary Live moderation feed
// @Description WebSocket stream of admin events (reports filed, content concealed, adjudications, penalties). Authenticate with ?token=.
// @Tags moderation-admin
// @Param token query string true "Admin JWT"
// @Success 101
// @Router /admin/ws [get]
func (s *Server) AdminFeedHandler() fiber.Handler {
	return s.feedHandler(s.adminHub)
}

// NoticeStreamHandler streams the caller's own notices.
// @Summary Own notice stream
// @Description WebSocket stream of notices addressed to the caller (penalties, report resolutions, suspension expiry). Authenticate with ?token=.
// @Tags reports
// @Param token query string true "JWT"
// @Success 101
// @Router /me/ws [get]
func (s *Server) NoticeStreamHandler() fiber.Handler {
	return s.feedHandler(s.noticeHub)
}

// feedHandler registers connections with hub. Authentication is handled by
// route middleware and the user id is read from connection locals.
func (s *Server) feedHandler(hub *notifications.Hub) fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		wsLog := observability.NewWSLogger(hub.Name())

		uid, ok := conn.Locals(middleware.LocalUserID).(uint)
		if !ok || uid == 0 {
			_ = conn.Close()
			return
		}

		client, err := hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("feed registration refused",
				slog.String("hub", hub.Name()), slog.Uint64("user_id", uint64(uid)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		wsLog.LogConnect(context.Background(), uid)
		defer wsLog.LogDisconnect(context.Background(), uid, "closed")

		client.Serve()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
