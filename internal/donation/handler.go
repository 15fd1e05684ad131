package donation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/paw-haven/paw_haven/internal/gateway"
)

const signatureHeader = "X-YooMoney-Signature"

// Handler exposes donation and webhook endpoints.
type Handler struct {
	service  *Service
	verifier *gateway.Verifier
}

// NewHandler constructs a donation handler.
func NewHandler(service *Service, verifier *gateway.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

type createRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Purpose       string          `json:"purpose"`
	IsRecurring   bool            `json:"is_recurring"`
	Anonymous     bool            `json:"anonymous"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	PaymentMethod string          `json:"payment_method"`
}

// Create accepts a donation request and returns the provider redirect.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Create(c.UserContext(), CreateInput{
		Amount:        req.Amount,
		Purpose:       req.Purpose,
		IsRecurring:   req.IsRecurring,
		Anonymous:     req.Anonymous,
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAmountBelowMinimum):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"donation_id": res.Donation.ID,
		"payment_url": res.PaymentURL,
		"status":      res.Donation.Status,
	})
}

// Webhook reconciles provider payment events into donation state.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	body := c.Body()

	if !h.verifier.Verify(body, c.Get(signatureHeader)) {
		return fiber.NewError(http.StatusUnauthorized, "invalid signature")
	}

	var event gateway.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed event payload")
	}

	_, err := h.service.Settle(c.UserContext(), event)
	switch {
	case errors.Is(err, ErrUnknownPayment):
		return fiber.NewError(http.StatusNotFound, "donation not found")
	case errors.Is(err, ErrInvalidTransition):
		// Logged by the service; the provider gets a 200 so it stops retrying.
	case err != nil:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}

type adminDonation struct {
	ID          string          `json:"id"`
	PublicName  string          `json:"public_name"`
	Amount      decimal.Decimal `json:"amount"`
	Purpose     Purpose         `json:"purpose"`
	Status      Status          `json:"status"`
	PaidAt      *time.Time      `json:"paid_at"`
	CreatedAt   time.Time       `json:"created_at"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	IsRecurring bool            `json:"is_recurring"`
}

// AdminList returns recent donations for the admin panel.
func (h *Handler) AdminList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	status := Status(c.Query("status"))

	donations, err := h.service.ListRecent(c.UserContext(), limit, status)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	result := make([]adminDonation, 0, len(donations))
	for _, don := range donations {
		result = append(result, adminDonation{
			ID:          don.ID,
			PublicName:  don.PublicName,
			Amount:      don.Amount,
			Purpose:     don.Purpose,
			Status:      don.Status,
			PaidAt:      don.PaidAt,
			CreatedAt:   don.CreatedAt,
			Phone:       don.Phone,
			Email:       don.Email,
			IsRecurring: don.IsRecurring,
		})
	}
	return c.JSON(result)
}

// AdminMonthlyStats returns per-day donation totals for one month.
func (h *Handler) AdminMonthlyStats(c *fiber.Ctx) error {
	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return fiber.NewError(http.StatusBadRequest, "month must be between 1 and 12")
	}

	stats, err := h.service.StatsForMonth(c.UserContext(), year, month)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}
