package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

type ttsHandler struct {
	responder Responder
	logger    zerolog.Logger
	speech    *services.SpeechSynthesizer
}

func newTTSHandler(speech *services.SpeechSynthesizer) ttsHandler {
	logger := log.With().Str("handlerName", "ttsHandler").Logger()

	return ttsHandler{
		responder: NewResponder(logger),
		logger:    logger,
		speech:    speech,
	}
}

type ttsRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
}

type ttsResponse struct {
	Status   string `json:"status"`
	AudioURL string `json:"audioUrl"`
}

// synthesize reads text aloud and returns where the MP3 was stored
// @Summary Text to speech
// @Tags Speech
// @Accept json
// @Produce json
// @Param body body ttsRequest true "Text to read"
// @Success 200 {object} ttsResponse
// @Failure 400 {object} ErrorResponse "Text is required"
// @Failure 502 {object} ErrorResponse "Speech service failed"
// @Router /api/tts [post]
func (h ttsHandler) synthesize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ttsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			h.responder.WriteError(w, errs.NewValidationError("text", "text is required"))
			return
		}

		audioURL, err := h.speech.Synthesize(r.Context(), req.Text, req.Lang)
		if err != nil {
			h.responder.WriteError(w, errs.NewUpstreamError("text to speech", err))
			return
		}

		h.responder.WriteJSON(w, ttsResponse{Status: "success", AudioURL: audioURL})
	}
}
