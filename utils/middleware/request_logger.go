package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const loggerKey = "logger"

// RequestLogger stores a child logger tagged with the request id in c.Locals
// and logs the outcome of the request
func RequestLogger(base *zap.Logger) fiber.Handler {
	if base == nil {
		base = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLogger := base
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			reqLogger = base.With(zap.String("request_id", id))
		}
		c.Locals(loggerKey, reqLogger)

		err := c.Next()
		if err != nil {
			// let the app error handler write the response before reading the status
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			reqLogger.Error("request failed", fields...)
		case status >= fiber.StatusBadRequest:
			reqLogger.Warn("client error", fields...)
		default:
			reqLogger.Debug("request completed", fields...)
		}

		return nil
	}
}

// Logger returns the request-scoped logger, or a no-op logger outside a request chain
func Logger(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
