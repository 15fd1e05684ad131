package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/paw-haven/paw_haven/internal/identity"
)

const codeLength = 4

var (
	// ErrCodeExpired indicates the code outlived its TTL; the session is removed.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeMismatch indicates the supplied code was wrong; the session stays
	// so the donor may retry.
	ErrCodeMismatch = errors.New("verification code mismatch")

	// ErrUserExists rejects registration for an already-known phone.
	ErrUserExists = errors.New("user already registered")
)

// Service runs the phone verification flow.
type Service struct {
	sessions SessionStore
	sender   CodeSender
	users    identity.Repository
	ttl      time.Duration
}

// NewService constructs the verification service.
func NewService(sessions SessionStore, sender CodeSender, users identity.Repository, ttl time.Duration) *Service {
	return &Service{sessions: sessions, sender: sender, users: users, ttl: ttl}
}

// SendCode creates a verification session and dispatches the code over the
// requested channel (sms or call).
func (s *Service) SendCode(ctx context.Context, phone, method string) (string, error) {
	normalized := identity.NormalizePhone(phone)
	if normalized == "" {
		return "", errors.New("phone is required")
	}
	if method != "call" {
		method = "sms"
	}

	code, err := generateCode(codeLength)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	sessionID := uuid.New().String()
	session := Session{
		Phone:     normalized,
		Code:      code,
		Method:    method,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Put(ctx, sessionID, session, s.ttl); err != nil {
		return "", err
	}

	if err := s.sender.Send(ctx, normalized, code, method); err != nil {
		return "", fmt.Errorf("deliver verification code: %w", err)
	}
	return sessionID, nil
}

// Verify checks a code against its session and returns the verified phone.
// Expired sessions are deleted on detection; a wrong code leaves the session
// in place for a retry.
func (s *Service) Verify(ctx context.Context, sessionID, code string) (string, error) {
	session, err := s.checkCode(ctx, sessionID, code)
	if err != nil {
		return "", err
	}
	return session.Phone, nil
}

// Register verifies the code and creates a new user for the phone.
func (s *Service) Register(ctx context.Context, sessionID, code, phone, email, fullName string) (identity.User, error) {
	normalized := identity.NormalizePhone(phone)
	session, err := s.checkCode(ctx, sessionID, code)
	if err != nil {
		return identity.User{}, err
	}
	if session.Phone != normalized {
		return identity.User{}, ErrCodeMismatch
	}

	if _, err := s.users.FindByPhone(ctx, normalized); err == nil {
		return identity.User{}, ErrUserExists
	} else if !errors.Is(err, identity.ErrNotFound) {
		return identity.User{}, err
	}

	user := identity.User{
		ID:        uuid.New().String(),
		Phone:     normalized,
		Email:     email,
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return identity.User{}, err
	}

	_ = s.sessions.Delete(ctx, sessionID)
	return user, nil
}

// Login verifies the code and returns the existing user for the phone.
func (s *Service) Login(ctx context.Context, sessionID, code, phone string) (identity.User, error) {
	normalized := identity.NormalizePhone(phone)
	session, err := s.checkCode(ctx, sessionID, code)
	if err != nil {
		return identity.User{}, err
	}
	if session.Phone != normalized {
		return identity.User{}, ErrCodeMismatch
	}

	user, err := s.users.FindByPhone(ctx, normalized)
	if err != nil {
		return identity.User{}, err
	}

	_ = s.sessions.Delete(ctx, sessionID)
	return user, nil
}

func (s *Service) checkCode(ctx context.Context, sessionID, code string) (Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		// The store's own TTL usually beats us here; this covers clock slop
		// and the in-memory implementation.
		_ = s.sessions.Delete(ctx, sessionID)
		return Session{}, ErrCodeExpired
	}
	if session.Code != code {
		return Session{}, ErrCodeMismatch
	}
	return session, nil
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
