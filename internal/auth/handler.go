package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/paw-haven/paw_haven/internal/identity"
)

// Handler exposes the phone verification endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendCodeRequest struct {
	Phone  string `json:"phone"`
	Method string `json:"method"`
}

// SendCode starts a verification session.
func (h *Handler) SendCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Phone == "" {
		return fiber.NewError(http.StatusBadRequest, "phone is required")
	}

	sessionID, err := h.service.SendCode(c.UserContext(), req.Phone, req.Method)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	message := "code sent"
	if req.Method == "call" {
		message = "call placed"
	}
	return c.JSON(fiber.Map{"session_id": sessionID, "message": message})
}

type verifyCodeRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

// VerifyCode checks a code without creating or logging in a user.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.SessionID == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "session_id and code are required")
	}

	phone, err := h.service.Verify(c.UserContext(), req.SessionID, req.Code)
	if err != nil {
		return verificationError(err)
	}
	return c.JSON(fiber.Map{"verified": true, "phone": phone})
}

type registerRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
}

// Register creates a new user after code verification.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Phone == "" || req.FullName == "" || req.Code == "" || req.SessionID == "" {
		return fiber.NewError(http.StatusBadRequest, "phone, full_name, code and session_id are required")
	}

	user, err := h.service.Register(c.UserContext(), req.SessionID, req.Code, req.Phone, req.Email, req.FullName)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return fiber.NewError(http.StatusBadRequest, "user already registered for this phone")
		}
		return verificationError(err)
	}
	return c.JSON(fiber.Map{"user": userPayload(user)})
}

type loginRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	Phone     string `json:"phone"`
}

// Login returns the existing user after code verification.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Phone == "" || req.Code == "" || req.SessionID == "" {
		return fiber.NewError(http.StatusBadRequest, "phone, code and session_id are required")
	}

	user, err := h.service.Login(c.UserContext(), req.SessionID, req.Code, req.Phone)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found, please register")
		}
		return verificationError(err)
	}
	return c.JSON(fiber.Map{"user": userPayload(user)})
}

func userPayload(user identity.User) fiber.Map {
	return fiber.Map{
		"id":        user.ID,
		"phone":     user.Phone,
		"email":     user.Email,
		"full_name": user.FullName,
	}
}

func verificationError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(http.StatusNotFound, "session not found or expired")
	case errors.Is(err, ErrCodeExpired):
		return fiber.NewError(http.StatusBadRequest, "code expired")
	case errors.Is(err, ErrCodeMismatch):
		return fiber.NewError(http.StatusBadRequest, "invalid code")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
