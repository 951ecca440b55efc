package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/clipchat/internal/gemini"
)

type ChatHandler struct {
	client *gemini.Client
	logger *slog.Logger
}

func NewChatHandler(client *gemini.Client, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		client: client,
		logger: logger,
	}
}

// Ask builds one prompt from the question and the normalized transcript and
// makes one model call. Vendor failures are logged in full but surfaced as
// a single opaque message.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message    string          `json:"message"`
		Transcript json.RawMessage `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Message == "" || len(req.Transcript) == 0 || bytes.Equal(req.Transcript, []byte("null")) {
		respondError(w, http.StatusBadRequest, "Missing message or transcript")
		return
	}

	transcriptText := gemini.FlattenTranscript(req.Transcript)
	if transcriptText == "" {
		respondError(w, http.StatusBadRequest, "Missing message or transcript")
		return
	}

	prompt := gemini.BuildPrompt(transcriptText, req.Message)
	answer, err := h.client.GenerateContent(r.Context(), prompt)
	if err != nil {
		h.logger.Error("generate content", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate AI response")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"response": answer})
}
