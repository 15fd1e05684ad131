package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/paw-haven/paw_haven/internal/subscription"
)

// RegisterSubscriptionRoutes wires subscription listing and cancellation.
func RegisterSubscriptionRoutes(r fiber.Router, h *subscription.Handler) {
	r.Get("/subscriptions", h.List)
	r.Post("/subscriptions/:id/cancel", h.Cancel)
}
