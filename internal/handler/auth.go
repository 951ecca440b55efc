package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
)

const sessionCookieName = "clipchat_session"

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    us,
		sessions: ss,
		logger:   logger,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new free-tier user and signs them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to process request")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Username is already taken")
		return
	}

	user, err := h.users.Create(req.Username, req.Password)
	if err != nil {
		h.logger.Error("create user", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to process request")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Unable to process request")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login scans for an exact username and password match. The failure message
// is the same whichever field was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to process request")
		return
	}
	if user == nil || user.Password != req.Password {
		respondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	// Backfill a plan for records created before plans existed.
	if user.Plan == "" {
		if err := h.users.UpdatePlan(user.ID, model.PlanFree); err != nil {
			h.logger.Error("backfill plan", "error", err)
			respondError(w, http.StatusInternalServerError, "Unable to process request")
			return
		}
		user.Plan = model.PlanFree
	}

	if err := h.startSession(w, user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Unable to process request")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		if err := h.sessions.Delete(sess.ID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(sess.UserID)
	if err != nil || user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID string) error {
	sess, err := h.sessions.Create(userID, false)
	if err != nil {
		h.logger.Error("create session", "error", err)
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
