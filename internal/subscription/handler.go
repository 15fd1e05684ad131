package subscription

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/paw-haven/paw_haven/internal/donation"
)

// Handler exposes subscription endpoints.
type Handler struct {
	scheduler *Scheduler
}

// NewHandler constructs a subscription handler.
func NewHandler(scheduler *Scheduler) *Handler {
	return &Handler{scheduler: scheduler}
}

type subscriptionResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Purpose      donation.Purpose `json:"purpose"`
	Frequency    Frequency        `json:"frequency"`
	Status       Status           `json:"status"`
	NextChargeAt time.Time        `json:"next_charge_at"`
	LastChargeAt *time.Time       `json:"last_charge_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

// List returns subscriptions, filtered by user and status. The status filter
// defaults to active, matching the profile view.
func (h *Handler) List(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	status := Status(c.Query("status", string(StatusActive)))

	subs, err := h.scheduler.List(c.UserContext(), userID, status)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	result := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		result = append(result, subscriptionResponse{
			ID:           sub.ID,
			UserID:       sub.UserID,
			Amount:       sub.Amount,
			Purpose:      sub.Purpose,
			Frequency:    sub.Frequency,
			Status:       sub.Status,
			NextChargeAt: sub.NextChargeAt,
			LastChargeAt: sub.LastChargeAt,
			CreatedAt:    sub.CreatedAt,
		})
	}
	return c.JSON(result)
}

// Cancel stops future charges for a subscription.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	if _, err := h.scheduler.Cancel(c.UserContext(), c.Params("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "subscription not found")
		case errors.Is(err, ErrInvalidTransition):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}
