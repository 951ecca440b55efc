package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
	"github.com/dukerupert/clipchat/internal/transcript"
)

type TranscriptHandler struct {
	client *transcript.Client
	users  *store.UserStore
	logger *slog.Logger
}

func NewTranscriptHandler(client *transcript.Client, users *store.UserStore, logger *slog.Logger) *TranscriptHandler {
	return &TranscriptHandler{
		client: client,
		users:  users,
		logger: logger,
	}
}

// Fetch proxies one transcript request to the vendor. The URL is validated
// before any outbound call; a successful fetch consumes one attempt for
// free and pro users.
func (h *TranscriptHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "YouTube URL is required")
		return
	}

	videoID, ok := transcript.ExtractVideoID(req.URL)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid YouTube URL")
		return
	}

	sess := SessionFromContext(r.Context())
	user, err := h.users.GetByID(sess.UserID)
	if err != nil || user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if user.Plan != model.PlanEnterprise && user.AttemptsRemaining <= 0 {
		respondError(w, http.StatusForbidden, "No attempts remaining")
		return
	}

	result, err := h.client.Fetch(r.Context(), videoID)
	if err != nil {
		h.logger.Error("fetch transcript", "video_id", videoID, "error", err)
		var se *transcript.StatusError
		switch {
		case errors.Is(err, transcript.ErrNoTranscript):
			respondError(w, http.StatusInternalServerError, "No transcript found for this video")
		case errors.As(err, &se):
			respondError(w, http.StatusInternalServerError, se.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Failed to fetch transcript")
		}
		return
	}

	if user.Plan != model.PlanEnterprise {
		if err := h.users.DecrementAttempts(user.ID); err != nil {
			h.logger.Error("decrement attempts", "user_id", user.ID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"transcript": result.Transcript,
		"title":      result.Title,
	})
}
