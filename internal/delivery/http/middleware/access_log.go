package middleware

import (
	"time"

	"parttime-match/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CtxRequestIDKey = "request_id"

type AccessLogMiddleware struct {
	logger *zap.Logger
}

func NewAccessLogMiddleware(log *zap.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.OrNop(log).Named("http")}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("rid", rid),
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("req_bytes", c.Request().Header.ContentLength()),
			zap.Int("resp_bytes", c.Response().Header.ContentLength()),
			zap.String("ua", c.Get("User-Agent")),
		}
		if userID, ok := c.Locals(CtxUserIDKey).(uuid.UUID); ok {
			fields = append(fields, zap.String("user_id", userID.String()))
		}

		if m != nil && m.logger != nil {
			switch {
			case status >= 500:
				m.logger.Error("HTTP access", fields...)
			case status >= 400:
				m.logger.Warn("HTTP access", fields...)
			default:
				m.logger.Info("HTTP access", fields...)
			}
		}

		return err
	}
}
