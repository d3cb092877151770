package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendNotifier_Send(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	n, err := NewResendNotifier("re_test", "Blog <noreply@x.com>", zerolog.Nop())
	require.NoError(t, err)
	n.WithEndpoint(srv.URL)

	require.NoError(t, n.Send(context.Background(), Email{To: "a@x.com", Subject: "Hi", Text: "Hello"}))
	assert.Equal(t, []string{"a@x.com"}, got.To)
	assert.Equal(t, "Blog <noreply@x.com>", got.From)
	assert.Equal(t, "Hello", got.Text)
}

func TestResendNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	n, err := NewResendNotifier("re_test", "bad", zerolog.Nop())
	require.NoError(t, err)
	n.WithEndpoint(srv.URL)

	err = n.Send(context.Background(), Email{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestNewResendNotifier_RequiresConfig(t *testing.T) {
	_, err := NewResendNotifier("", "from", zerolog.Nop())
	assert.Error(t, err)
	_, err = NewResendNotifier("key", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestOutboxNotifier_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.log")
	n, err := NewOutboxNotifier(path)
	require.NoError(t, err)

	require.NoError(t, n.Send(context.Background(), verificationEmail("a@x.com", "123456")))
	require.NoError(t, n.Send(context.Background(), welcomeEmail("Bob", "b@x.com")))
	require.NoError(t, n.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "a@x.com", first["to"])
	assert.Equal(t, "Account Verification OTP", first["subject"])
	assert.Contains(t, first["text"], "123456")
}

func TestMailWorker_HandleDelivers(t *testing.T) {
	delivery := &recordingNotifier{}
	w := &MailWorker{delivery: delivery, logger: zerolog.Nop()}

	payload, err := json.Marshal(resetEmail("a@x.com", "654321"))
	require.NoError(t, err)

	require.NoError(t, w.handle(context.Background(), payload))
	assert.Equal(t, "Password Reset OTP", delivery.last().Subject)

	assert.Error(t, w.handle(context.Background(), []byte("not json")))

	delivery.err = errSMTPDown
	assert.ErrorIs(t, w.handle(context.Background(), payload), errSMTPDown)
}

func TestNewKafkaNotifier_RequiresBroker(t *testing.T) {
	_, err := NewKafkaNotifier(KafkaConfig{Topic: "blog.mail"})
	assert.Error(t, err)

	n, err := NewKafkaNotifier(KafkaConfig{Broker: "localhost:9092", Topic: "blog.mail"})
	require.NoError(t, err)
	assert.Nil(t, n.writer.Transport)
	require.NoError(t, n.Close())
}
