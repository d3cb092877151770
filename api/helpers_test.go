package api

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-blog-backend/services"
)

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

type capturingNotifier struct {
	mu   sync.Mutex
	sent []services.Email
}

func (n *capturingNotifier) Send(_ context.Context, email services.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, email)
	return nil
}

// lastCode extracts the six digit code from the most recent email.
func (n *capturingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	code := otpPattern.FindString(n.sent[len(n.sent)-1].Text)
	require.NotEmpty(t, code)
	return code
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
