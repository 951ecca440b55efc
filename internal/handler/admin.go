package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
)

type AdminHandler struct {
	users        *store.UserStore
	payments     *store.PaymentStore
	sessions     *store.SessionStore
	username     string
	passwordHash string
	logger       *slog.Logger
}

func NewAdminHandler(us *store.UserStore, ps *store.PaymentStore, ss *store.SessionStore, username, passwordHash string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:        us,
		payments:     ps,
		sessions:     ss,
		username:     username,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

// Login checks the operator credential and starts an admin session. The
// credential lives in the environment as a bcrypt hash, never in the
// users table.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.username == "" || h.passwordHash == "" {
		respondError(w, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username != h.username ||
		bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	sess, err := h.sessions.Create("", true)
	if err != nil {
		h.logger.Error("create admin session", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to process request")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Stats aggregates the dashboard numbers. The monthly window is the
// current calendar month in server-local time; users with an unknown plan
// value count as free.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.payments.TotalRevenue()
	if err != nil {
		h.statsError(w, err)
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	monthly, err := h.payments.RevenueBetween(monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		h.statsError(w, err)
		return
	}

	totalUsers, err := h.users.Count()
	if err != nil {
		h.statsError(w, err)
		return
	}
	byPlan, err := h.users.CountByPlan()
	if err != nil {
		h.statsError(w, err)
		return
	}

	pro := byPlan[model.PlanPro]
	enterprise := byPlan[model.PlanEnterprise]
	respondJSON(w, http.StatusOK, model.Stats{
		TotalRevenue:    total,
		MonthlyRevenue:  monthly,
		TotalUsers:      totalUsers,
		FreeUsers:       totalUsers - pro - enterprise,
		ProUsers:        pro,
		EnterpriseUsers: enterprise,
	})
}

func (h *AdminHandler) statsError(w http.ResponseWriter, err error) {
	h.logger.Error("admin stats", "error", err)
	respondError(w, http.StatusInternalServerError, "Failed to load stats")
}

// ListUsers returns every registered user, newest first.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// ListPayments returns every recorded payment, newest first.
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.List()
	if err != nil {
		h.logger.Error("list payments", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load payments")
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	respondJSON(w, http.StatusOK, payments)
}
