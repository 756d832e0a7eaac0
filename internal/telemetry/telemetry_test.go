package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitialize_Disabled(t *testing.T) {
	p, err := Initialize(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestFiberMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/v1/workouts/:id", func(c *fiber.Ctx) error {
		SetSpanAttribute(c, "workout.id", c.Params("id"))
		AddSpanEvent(c, "loaded", attribute.Int("sets", 3))
		return c.SendStatus(fiber.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/v1/workouts/abc", nil)
	req.Header.Set(CorrelationHeader, "c-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /v1/workouts/:id", span.Name())
	assert.Contains(t, span.Attributes(), attribute.String("http.route", "/v1/workouts/:id"))
	assert.Contains(t, span.Attributes(), attribute.String("http.correlation_id", "c-1"))
	assert.Contains(t, span.Attributes(), attribute.String("workout.id", "abc"))
	assert.Contains(t, span.Attributes(), attribute.Int("http.status_code", fiber.StatusNotFound))
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "loaded", span.Events()[0].Name)
}

func TestFiberMiddleware_ReturnedError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Post("/v1/historical-1rm/reset", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "set store down")
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/v1/historical-1rm/reset", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", fiber.StatusServiceUnavailable))
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(-1))
	assert.Equal(t, 1.0, sampleRatio(2))
	assert.Equal(t, 0.2, sampleRatio(0.2))
}
