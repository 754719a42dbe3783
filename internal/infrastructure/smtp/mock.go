package smtp

import (
	"context"
	"log/slog"

	"github.com/portfolio-api/internal/pkg/id"
)

// MockMailer logs emails instead of sending them, for local development.
type MockMailer struct {
	logger *slog.Logger
}

func NewMockMailer(logger *slog.Logger) *MockMailer {
	return &MockMailer{logger: logger}
}

func (m *MockMailer) Send(_ context.Context, to, subject, html string) (string, error) {
	receipt := id.New()
	m.logger.Info("MOCK EMAIL",
		"to", to,
		"subject", subject,
		"body_length", len(html),
		"receipt", receipt)
	return receipt, nil
}
