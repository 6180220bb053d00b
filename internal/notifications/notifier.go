// Package notifications delivers moderation notices to users and the live
// event feed to administrators over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"warden/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// AdminChannel carries every moderation event for the admin feed.
	AdminChannel = "moderation:admin"

	userChannelPrefix = "moderation:user:"
)

// Dispatcher publishes notices and admin events into Redis. A Dispatcher
// without a client drops everything silently.
type Dispatcher struct {
	rdb *redis.Client
	now func() time.Time
}

// NewDispatcher creates a Dispatcher using the provided Redis client.
func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb, now: time.Now}
}

// NotifyUser publishes notice on the user's channel.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID uint, notice models.Notice) error {
	if d.rdb == nil {
		return nil
	}
	if notice.SentAt.IsZero() {
		notice.SentAt = d.now().UTC()
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	return d.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishAdminEvent publishes event on the admin feed channel.
func (d *Dispatcher) PublishAdminEvent(ctx context.Context, event models.AdminEvent) error {
	if d.rdb == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = d.now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal admin event: %w", err)
	}
	return d.rdb.Publish(ctx, AdminChannel, payload).Err()
}

// StartAdminSubscriber subscribes to the admin channel and calls onMessage for
// each event until ctx is cancelled. It returns once the subscription is live.
func (d *Dispatcher) StartAdminSubscriber(ctx context.Context, onMessage func(payload string)) error {
	return d.subscribe(ctx, "AdminSubscriber", []string{AdminChannel}, func(_ string, payload string) {
		onMessage(payload)
	})
}

// StartUserSubscriber subscribes to every user channel. onMessage receives the
// recipient id and the raw notice.
func (d *Dispatcher) StartUserSubscriber(ctx context.Context, onMessage func(userID uint, payload string)) error {
	return d.subscribe(ctx, "UserSubscriber", []string{userChannelPrefix + "*"}, func(channel, payload string) {
		userID, ok := ParseUserChannel(channel)
		if !ok {
			slog.Warn("invalid notification channel", "channel", channel)
			return
		}
		onMessage(userID, payload)
	})
}

func (d *Dispatcher) subscribe(ctx context.Context, name string, patterns []string, onMessage func(channel, payload string)) error {
	if d.rdb == nil {
		return nil
	}
	sub := d.rdb.PSubscribe(ctx, patterns...)
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %v: %w", patterns, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in "+name, "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParseUserChannel extracts the user id from a channel built by UserChannel.
func ParseUserChannel(channel string) (uint, bool) {
	if len(channel) <= len(userChannelPrefix) || channel[:len(userChannelPrefix)] != userChannelPrefix {
		return 0, false
	}
	id, err := strconv.ParseUint(channel[len(userChannelPrefix):], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
