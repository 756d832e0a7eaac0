package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const idempotencyKeyPrefix = "idempotency:"

// replay is what gets cached for a successful mutating request
type replay struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays the cached response for a repeated X-Correlation-ID on
// POST/PUT requests, so a retried workout save is not stored (and counted) twice.
// Only 2xx responses are cached, for ttl.
func IdempotencyMiddleware(cache *repository.RedisCacheRepository, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(telemetry.CorrelationHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := idempotencyKeyPrefix + c.Method() + ":" + c.Path() + ":" + correlationID
		ctx := c.UserContext()

		var cached replay
		err := cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(cached.Status).Send(cached.Body)
		case !errors.Is(err, repository.ErrCacheMiss):
			// Redis trouble must not block writes
			logrus.WithError(err).WithField("key", key).Warn("idempotency lookup failed")
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}
		// The response buffer is reused by fasthttp once the handler returns
		body := append([]byte(nil), c.Response().Body()...)
		if err := cache.Set(ctx, key, replay{Status: status, Body: body}, ttl); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to cache idempotent response")
		}
		return nil
	}
}
