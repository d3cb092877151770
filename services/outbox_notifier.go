package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// OutboxNotifier appends every email as a JSON line to a local file instead
// of delivering it. It is the default for development.
type OutboxNotifier struct {
	mu   sync.Mutex
	file *os.File
	out  zerolog.Logger
}

func NewOutboxNotifier(path string) (*OutboxNotifier, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open mail outbox: %w", err)
	}
	return &OutboxNotifier{
		file: file,
		out:  zerolog.New(file).With().Timestamp().Logger(),
	}, nil
}

func (n *OutboxNotifier) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.out.Log().
		Str("to", email.To).
		Str("subject", email.Subject).
		Str("text", email.Text).
		Msg("email")
	return nil
}

func (n *OutboxNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.file.Close()
}
