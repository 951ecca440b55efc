package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/clipchat/internal/billing"
)

type PaymentHandler struct {
	reconciler *billing.Reconciler
	logger     *slog.Logger
}

func NewPaymentHandler(rec *billing.Reconciler, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		reconciler: rec,
		logger:     logger,
	}
}

// Success handles the browser's return from the vendor's hosted checkout.
// It runs the same reconciliation as the webhook; if the webhook fired
// first this is a no-op that still reports success.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session_id")
	plan := q.Get("plan")
	userID := q.Get("user_id")

	if sessionID == "" || plan == "" || userID == "" {
		respondError(w, http.StatusBadRequest, "Missing payment information")
		return
	}

	payment, err := h.reconciler.Apply(sessionID, plan, userID)
	if err != nil {
		h.logger.Error("process payment", "session_id", sessionID, "error", err)
		if errors.Is(err, billing.ErrUnknownPlan) {
			respondError(w, http.StatusBadRequest, "Invalid plan")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to process payment")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "Successfully upgraded to " + titleCase(payment.Plan) + " plan!",
		"payment":  payment,
		"redirect": "/dashboard",
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
