package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/paw-haven/paw_haven/internal/auth"
)

// RegisterAuthRoutes wires the phone verification endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	r.Post("/auth/send-code", rateLimiter, h.SendCode)
	r.Post("/auth/verify-code", h.VerifyCode)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}
