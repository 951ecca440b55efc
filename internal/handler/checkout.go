package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/clipchat/internal/billing"
	"github.com/dukerupert/clipchat/internal/store"
	clipstripe "github.com/dukerupert/clipchat/internal/stripe"
)

type CheckoutHandler struct {
	stripeClient *clipstripe.Client
	users        *store.UserStore
	logger       *slog.Logger
}

func NewCheckoutHandler(sc *clipstripe.Client, us *store.UserStore, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		stripeClient: sc,
		users:        us,
		logger:       logger,
	}
}

// CreateCheckoutSession creates a Stripe checkout session for a paid plan
// and returns the hosted page URL.
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := billing.PlanAmount(req.Plan); !ok {
		respondError(w, http.StatusBadRequest, "Invalid plan")
		return
	}

	user, err := h.users.GetByID(sess.UserID)
	if err != nil || user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	url, err := h.stripeClient.CreateCheckoutSession(user.ID, user.Username, req.Plan)
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
