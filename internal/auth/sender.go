package auth

import (
	"context"
	"log/slog"
)

// CodeSender delivers verification codes to donors, by SMS or voice call.
type CodeSender interface {
	Send(ctx context.Context, phone, code, method string) error
}

// LoggerSender is a stub sender that writes codes to the structured log
// instead of dispatching real SMS/calls.
type LoggerSender struct {
	logger *slog.Logger
}

// NewLoggerSender constructs the logging sender stub.
func NewLoggerSender(logger *slog.Logger) *LoggerSender {
	return &LoggerSender{logger: logger}
}

// Send writes the code to the structured logger.
func (s *LoggerSender) Send(_ context.Context, phone, code, method string) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("verification code issued", "phone", phone, "code", code, "method", method)
	return nil
}
