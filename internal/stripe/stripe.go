package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/dukerupert/clipchat/internal/model"
)

// ErrNoSignature means the webhook request carried no signature header.
var ErrNoSignature = errors.New("no signature provided")

type Config struct {
	SecretKey         string
	WebhookSecret     string
	ProPriceID        string
	EnterprisePriceID string
	SuccessURL        string
	CancelURL         string
	// InsecureWebhooks permits parsing events without verification when no
	// signing secret is configured. Never enable outside local development.
	InsecureWebhooks bool
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// PriceIDForPlan returns the Stripe price ID for the given plan.
func (c *Client) PriceIDForPlan(plan string) string {
	if plan == model.PlanEnterprise {
		return c.cfg.EnterprisePriceID
	}
	return c.cfg.ProPriceID
}

// CreateCheckoutSession creates a subscription checkout session and returns
// the hosted page URL. The user id and plan ride along both as metadata (for
// the webhook) and as success-URL query parameters (for the redirect flow).
func (c *Client) CreateCheckoutSession(userID, username, plan string) (string, error) {
	successURL := fmt.Sprintf("%s?session_id={CHECKOUT_SESSION_ID}&plan=%s&user_id=%s",
		c.cfg.SuccessURL, plan, userID)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.PriceIDForPlan(plan)),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(c.cfg.CancelURL),
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("username", username)
	params.AddMetadata("plan", plan)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ConstructWebhookEvent verifies the signature and returns the parsed event.
// With no signing secret configured, events are only parsed when the
// insecure development mode was explicitly enabled.
func (c *Client) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if sigHeader == "" {
		return stripe.Event{}, ErrNoSignature
	}
	if c.cfg.WebhookSecret != "" {
		return webhook.ConstructEvent(payload, sigHeader, c.cfg.WebhookSecret)
	}
	if !c.cfg.InsecureWebhooks {
		return stripe.Event{}, errors.New("webhook signing secret not configured")
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, fmt.Errorf("parse unverified event: %w", err)
	}
	return event, nil
}
