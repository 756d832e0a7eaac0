package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentApp(t *testing.T) (*fiber.App, *int, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	app := fiber.New()
	app.Use(IdempotencyMiddleware(repository.NewRedisCacheRepository(client), time.Hour))
	app.Post("/v1/workouts", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	app.Put("/v1/fail", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nope"})
	})
	return app, &calls, mr
}

func send(t *testing.T, app *fiber.App, method, path, correlationID string) (int, string, bool) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header.Get("X-Idempotent-Replay") == "true"
}

func TestIdempotencyMiddleware_Replays(t *testing.T) {
	app, calls, mr := newIdempotentApp(t)

	status, body, replayed := send(t, app, "POST", "/v1/workouts", "abc")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.False(t, replayed)

	status, body, replayed = send(t, app, "POST", "/v1/workouts", "abc")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.True(t, replayed)
	assert.Equal(t, 1, *calls)

	assert.Greater(t, mr.TTL("idempotency:POST:/v1/workouts:abc"), time.Duration(0))

	// A different correlation ID or none at all goes through
	send(t, app, "POST", "/v1/workouts", "def")
	send(t, app, "POST", "/v1/workouts", "")
	assert.Equal(t, 3, *calls)
}

func TestIdempotencyMiddleware_SkipsFailures(t *testing.T) {
	app, calls, _ := newIdempotentApp(t)

	send(t, app, "PUT", "/v1/fail", "abc")
	_, _, replayed := send(t, app, "PUT", "/v1/fail", "abc")
	assert.False(t, replayed)
	assert.Equal(t, 2, *calls)
}

func TestIdempotencyMiddleware_RedisDown(t *testing.T) {
	app, calls, mr := newIdempotentApp(t)
	mr.Close()

	status, _, _ := send(t, app, "POST", "/v1/workouts", "abc")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 1, *calls)
}
