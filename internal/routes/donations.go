package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/paw-haven/paw_haven/internal/donation"
)

// RegisterDonationRoutes wires donation, webhook and admin reporting endpoints.
func RegisterDonationRoutes(r fiber.Router, h *donation.Handler, idempotency fiber.Handler) {
	if idempotency != nil {
		r.Post("/donations", idempotency, h.Create)
	} else {
		r.Post("/donations", h.Create)
	}
	r.Post("/yoomoney/webhook", h.Webhook)

	r.Get("/admin/donations", h.AdminList)
	r.Get("/admin/donations/monthly-stats", h.AdminMonthlyStats)
}
