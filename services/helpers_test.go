package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, email Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, email)
	return nil
}

func (n *recordingNotifier) last() Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return Email{}
	}
	return n.sent[len(n.sent)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       database.Database
	auth     *AuthService
	blog     *BlogService
	tokens   *auth.TokenIssuer
	notifier *recordingNotifier
	clock    *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.NewMemory()
	clock := newFakeClock()
	notifier := &recordingNotifier{}
	tokens := auth.NewTokenIssuer("test-secret", 7*24*time.Hour).WithClock(clock.Now)

	authSvc := NewAuthService(db.UserRepo(), auth.NewBcryptHasher(bcrypt.MinCost), tokens, notifier, nil, zerolog.Nop()).
		WithClock(clock.Now).
		WithPrivilegedSignup(true)
	blogSvc := NewBlogService(db, NewSanitizer(), nil, zerolog.Nop()).WithClock(clock.Now)

	return &testEnv{db: db, auth: authSvc, blog: blogSvc, tokens: tokens, notifier: notifier, clock: clock}
}

// register creates a user with the given role directly through the service.
func (e *testEnv) register(t *testing.T, name, email string, role models.Role) *models.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: "p1",
		Role:     string(role),
	})
	require.NoError(t, err)
	return res.User
}

var errSMTPDown = errors.New("smtp down")
