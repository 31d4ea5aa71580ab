package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"go.uber.org/zap"
)

// RequestLogger writes one structured entry per request
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Int("size", len(c.Response().Body())),
			zap.String("ip", c.IP()),
		}
		if user := CurrentUser(c); user != nil {
			fields = append(fields, zap.Uint64("user_id", user.ID))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}

// errorStatus is the status the app error handler will answer err with
func errorStatus(err error) int {
	var ce *types.CustomError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ce):
		return ce.Code
	case errors.As(err, &fe):
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// SecurityHeaders sets browser hardening headers on every response
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Prevent MIME sniffing
		c.Set("X-Content-Type-Options", "nosniff")

		// Clickjacking protection
		c.Set("X-Frame-Options", "DENY")

		c.Set("Referrer-Policy", "no-referrer-when-downgrade")
		c.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		return c.Next()
	}
}
