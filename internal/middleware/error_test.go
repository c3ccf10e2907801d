package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/middleware"
	"leadsync/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newErrorTestApp(handlerErr error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return handlerErr
	})
	return app
}

func TestErrorHandler_RateLimitedSetsRetryAfterHeader(t *testing.T) {
	app := newErrorTestApp(domain.NewRateLimitedError(42 * time.Second))

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "42", resp.Header.Get(ratelimit.HeaderRetryAfter))
}

func TestErrorHandler_NotFoundMapsTo404(t *testing.T) {
	app := newErrorTestApp(domain.NewAssessmentNotFoundError("a1"))

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(ratelimit.HeaderRetryAfter))
}

func TestErrorHandler_UnknownErrorIs500(t *testing.T) {
	app := newErrorTestApp(assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
