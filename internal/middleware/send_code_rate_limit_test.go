package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestSendCodeRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/send-code", SendCodeRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(phone string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/send-code", strings.NewReader(`{"phone":"`+phone+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if code := send("+79001234567"); code != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, code)
		}
	}
	if code := send("+79001234567"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", code)
	}

	// Another phone has its own window.
	if code := send("+79990000000"); code != fiber.StatusOK {
		t.Fatalf("expected 200 for distinct phone, got %d", code)
	}

	// The counter resets after the window lapses.
	mr.FastForward(2 * time.Minute)
	if code := send("+79001234567"); code != fiber.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", code)
	}
}
