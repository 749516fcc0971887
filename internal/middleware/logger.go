package middleware

import (
	"time"

	"rental-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const ctxLoggerKey = "logger"

// RequestLogger stores a request-scoped logger in the context and logs every request once
// it has been handled.
func RequestLogger(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		log := base.With(zap.String("request_id", GetRequestID(c)))
		c.Locals(ctxLoggerKey, log)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.HTTPStatus(err)
		}
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}

		// the request logger may have been enriched downstream
		log = Logger(c)
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("HTTP request failed", append(fields, zap.Error(err))...)
		case err != nil:
			log.Info("HTTP request rejected", append(fields, zap.String("reason", err.Error()))...)
		default:
			log.Info("HTTP request completed", fields...)
		}

		return err
	}
}

// Logger returns the request-scoped logger, or a no-op logger outside RequestLogger.
func Logger(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(ctxLoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

func SetLogger(c *fiber.Ctx, l *zap.Logger) {
	c.Locals(ctxLoggerKey, l)
}
