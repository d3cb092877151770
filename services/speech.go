package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultTTSBaseURL = "https://translate.google.com/translate_tts"
	maxTTSChunk       = 200
	maxTTSText        = 20000
)

// SpeechSynthesizer turns text into an MP3 using a Google Translate compatible
// endpoint and stores the audio through a FileStorage.
type SpeechSynthesizer struct {
	baseURL string
	client  *http.Client
	storage FileStorage
}

func NewSpeechSynthesizer(baseURL string, storage FileStorage) *SpeechSynthesizer {
	if baseURL == "" {
		baseURL = DefaultTTSBaseURL
	}
	return &SpeechSynthesizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
		storage: storage,
	}
}

// Synthesize returns the URL of the stored audio file.
func (s *SpeechSynthesizer) Synthesize(ctx context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(text) > maxTTSText {
		return "", fmt.Errorf("text exceeds %d characters", maxTTSText)
	}
	if lang == "" {
		lang = "en"
	}

	chunks := splitSpeechText(text, maxTTSChunk)
	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := s.fetchChunk(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return "", err
		}
	}

	return s.storage.Save(ctx, "tts/"+uuid.NewString()+".mp3", "audio/mpeg", &audio)
}

func (s *SpeechSynthesizer) fetchChunk(ctx context.Context, dst io.Writer, chunk, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request %d/%d: %w", idx+1, total, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts request %d/%d: unexpected status %d", idx+1, total, resp.StatusCode)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("read tts audio: %w", err)
	}
	return nil
}

// splitSpeechText breaks text on whitespace into chunks of at most limit runes.
// A single word longer than limit is cut.
func splitSpeechText(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
		}

		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	flush()

	return chunks
}
