package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserEmailKey contextKey = "user_email"

	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"
)

// ctxHandler adds request-scoped values to every record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		r.AddAttrs(slog.String("user_email", email))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds the request logger: JSON in production, text otherwise.
func NewLogger(w io.Writer, production bool) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// RequestID reuses an incoming X-Request-ID or mints one, and stores it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		c.Set(string(RequestIDKey), rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), RequestIDKey, rid))
		c.Next()
	}
}

// StructuredLogger logs one line per request. 5xx responses and handler errors log at error level.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		if email := c.GetString(string(UserEmailKey)); email != "" {
			ctx = context.WithValue(ctx, UserEmailKey, email)
		}

		status := c.Writer.Status()
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, slog.String("error", c.Errors.String()))
		}
		if status >= 500 || len(c.Errors) > 0 {
			logger.ErrorContext(ctx, "request failed", fields...)
			return
		}
		logger.InfoContext(ctx, "request processed", fields...)
	}
}
