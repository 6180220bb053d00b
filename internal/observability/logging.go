// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with the moderation-specific helpers below.
type Logger struct {
	*slog.Logger
}

var level = new(slog.LevelVar)

// GlobalLogger writes JSON in production and text elsewhere.
var GlobalLogger = &Logger{Logger: slog.New(NewHandler(os.Stdout, os.Getenv("APP_ENV")))}

// NewHandler builds the base handler shared by every logger in the process.
// All handlers follow the level set through SetLogLevel.
func NewHandler(w io.Writer, env string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if env == "production" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetLogLevel accepts debug, info, warn or error. An empty name means info.
func SetLogLevel(name string) error {
	if strings.TrimSpace(name) == "" {
		level.Set(slog.LevelInfo)
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", name, err)
	}
	level.Set(l)
	return nil
}

type logContextKey string

const correlationKey logContextKey = "correlation_id"

// LoggingConfig toggles the automated log streams.
type LoggingConfig struct {
	EnableCorrelationID bool
	EnableRepoLogging   bool
	EnableWSLogging     bool
	EnableAuditLogging  bool
}

var Config = LoggingConfig{
	EnableCorrelationID: true,
	EnableRepoLogging:   true,
	EnableWSLogging:     true,
	EnableAuditLogging:  true,
}

func GenerateCorrelationID() string {
	return uuid.NewString()
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

// fieldAttrs renders fields in key order so log lines diff cleanly.
func fieldAttrs(fields map[string]any) []any {
	out := make([]any, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

// RepoLogger logs writes to one table at debug level.
type RepoLogger struct {
	table string
}

func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) write(ctx context.Context, op string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	GlobalLogger.DebugContext(ctx, l.table+" "+op,
		slog.String("table", l.table),
		slog.String("operation", op),
		slog.Group("fields", fieldAttrs(fields)...),
	)
}

func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) { l.write(ctx, "create", fields) }
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) { l.write(ctx, "update", fields) }
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) { l.write(ctx, "delete", fields) }

// LogError logs a failed query. Nil errors are ignored.
func (l *RepoLogger) LogError(ctx context.Context, err error, op string) {
	if !Config.EnableRepoLogging || err == nil {
		return
	}
	GlobalLogger.ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", op),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

// WSLogger logs feed connections for one hub.
type WSLogger struct {
	hub string
}

func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

func (l *WSLogger) LogConnect(ctx context.Context, userID uint) {
	if Config.EnableWSLogging {
		GlobalLogger.InfoContext(ctx, "feed subscriber connected",
			slog.String("hub", l.hub), slog.Uint64("user_id", uint64(userID)))
	}
}

func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, reason string) {
	if Config.EnableWSLogging {
		GlobalLogger.InfoContext(ctx, "feed subscriber disconnected",
			slog.String("hub", l.hub), slog.Uint64("user_id", uint64(userID)), slog.String("reason", reason))
	}
}

// AuditLogger records moderation decisions: blocks, reports, sanctions and
// adjudications. Every entry carries the acting user when one exists.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

// Record writes one audit entry. actorID is zero for system actions.
func (l *AuditLogger) Record(ctx context.Context, action string, actorID uint, fields map[string]any) {
	if !Config.EnableAuditLogging {
		return
	}
	GlobalLogger.InfoContext(ctx, "moderation audit",
		slog.String("type", "audit"),
		slog.String("action", action),
		slog.Uint64("actor_id", uint64(actorID)),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.Group("details", fieldAttrs(fields)...),
	)
}

// LogAsyncOperationError logs a failure from work running outside a request.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]any) {
	GlobalLogger.ErrorContext(ctx, "async operation failed",
		slog.String("type", "async_error"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Group("fields", fieldAttrs(fields)...),
	)
}
