package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/clipchat/internal/billing"
	clipstripe "github.com/dukerupert/clipchat/internal/stripe"
)

type WebhookHandler struct {
	stripeClient *clipstripe.Client
	reconciler   *billing.Reconciler
	logger       *slog.Logger
}

func NewWebhookHandler(sc *clipstripe.Client, rec *billing.Reconciler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		stripeClient: sc,
		reconciler:   rec,
		logger:       logger,
	}
}

// HandleStripeWebhook verifies and dispatches one vendor event. Every path
// that passes verification acknowledges with {"received": true}, including
// unhandled event kinds, so the vendor stops retrying delivery.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body")
		return
	}

	event, err := h.stripeClient.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, clipstripe.ErrNoSignature) {
			respondError(w, http.StatusBadRequest, "No signature provided")
			return
		}
		h.logger.Warn("webhook signature verification failed", "error", err)
		respondError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "customer.subscription.updated":
		h.logSubscription(event, "subscription updated")
	case "customer.subscription.deleted":
		h.logSubscription(event, "subscription cancelled")
	default:
		h.logger.Info("unhandled event type", "type", event.Type)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// handleCheckoutCompleted activates the plan server-side from the checkout
// metadata. The redirect flow runs the same reconciliation, so whichever
// arrives second is a no-op.
func (h *WebhookHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("unmarshal checkout session", "error", err)
		return
	}

	userID := sess.Metadata["userId"]
	plan := sess.Metadata["plan"]
	if userID == "" || plan == "" {
		h.logger.Error("checkout session missing metadata", "session_id", sess.ID)
		return
	}

	if _, err := h.reconciler.Apply(sess.ID, plan, userID); err != nil {
		h.logger.Error("reconcile checkout", "session_id", sess.ID, "error", err)
		return
	}
	h.logger.Info("payment successful", "session_id", sess.ID, "user_id", userID, "plan", plan)
}

func (h *WebhookHandler) logSubscription(event stripe.Event, msg string) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("unmarshal subscription", "error", err)
		return
	}
	h.logger.Info(msg, "subscription_id", sub.ID, "status", sub.Status)
}
