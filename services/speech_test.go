package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSpeechText(t *testing.T) {
	assert.Nil(t, splitSpeechText("   ", 10))
	assert.Equal(t, []string{"hello world"}, splitSpeechText("hello   world", 20))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, splitSpeechText("aaa bbb ccc", 7))
	assert.Equal(t, []string{"abcde", "fgh", "ij"}, splitSpeechText("abcdefgh ij", 5))

	long := strings.Repeat("word ", 100)
	for _, chunk := range splitSpeechText(long, 200) {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 200)
	}
}

func TestSpeechSynthesizer_Synthesize(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "fr", r.URL.Query().Get("tl"))
		_, _ = w.Write([]byte("mp3:" + r.URL.Query().Get("idx") + ";"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost:7000")
	require.NoError(t, err)

	text := strings.Repeat("bonjour ", 60)
	url, err := NewSpeechSynthesizer(srv.URL, storage).Synthesize(context.Background(), text, "fr")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:7000/uploads/tts/"))
	assert.True(t, strings.HasSuffix(url, ".mp3"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	name := strings.TrimPrefix(url, "http://localhost:7000/uploads/")
	audio, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, "mp3:0;mp3:1;mp3:2;", string(audio))
}

func TestSpeechSynthesizer_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	synth := NewSpeechSynthesizer(srv.URL, storage)

	_, err = synth.Synthesize(context.Background(), "  ", "en")
	assert.Error(t, err)

	_, err = synth.Synthesize(context.Background(), "hello", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
