package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/clipchat/internal/billing"
	"github.com/dukerupert/clipchat/internal/config"
	"github.com/dukerupert/clipchat/internal/gemini"
	"github.com/dukerupert/clipchat/internal/handler"
	"github.com/dukerupert/clipchat/internal/middleware"
	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
	clipstripe "github.com/dukerupert/clipchat/internal/stripe"
	"github.com/dukerupert/clipchat/internal/transcript"
	ws "github.com/dukerupert/clipchat/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	transcriptH  *handler.TranscriptHandler
	chatH        *handler.ChatHandler
	checkoutH    *handler.CheckoutHandler
	webhookH     *handler.WebhookHandler
	paymentH     *handler.PaymentHandler
	adminH       *handler.AdminHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	paymentStore := store.NewPaymentStore(db)

	transcriptClient := transcript.NewClient(cfg.RapidAPIKey)
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey)
	stripeClient := clipstripe.NewClient(clipstripe.Config{
		SecretKey:         cfg.Stripe.SecretKey,
		WebhookSecret:     cfg.Stripe.WebhookSecret,
		ProPriceID:        cfg.Stripe.ProPriceID,
		EnterprisePriceID: cfg.Stripe.EnterprisePriceID,
		SuccessURL:        cfg.BaseURL + "/payment/success",
		CancelURL:         cfg.BaseURL + "/pricing",
		InsecureWebhooks:  cfg.Stripe.InsecureWebhooks,
	})

	reconciler := billing.NewReconciler(userStore, paymentStore, logger.With("component", "billing"))
	reconciler.SetNotifier(func(p model.Payment) {
		hub.Broadcast(ws.NewMessage("payment", "created", p.ID, map[string]any{
			"username": p.Username,
			"plan":     p.Plan,
			"amount":   p.Amount,
			"currency": p.Currency,
		}))
	})

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		transcriptH:  handler.NewTranscriptHandler(transcriptClient, userStore, logger.With("component", "transcript")),
		chatH:        handler.NewChatHandler(geminiClient, logger.With("component", "chat")),
		checkoutH:    handler.NewCheckoutHandler(stripeClient, userStore, logger.With("component", "checkout")),
		webhookH:     handler.NewWebhookHandler(stripeClient, reconciler, logger.With("component", "webhook")),
		paymentH:     handler.NewPaymentHandler(reconciler, logger.With("component", "payment")),
		adminH:       handler.NewAdminHandler(userStore, paymentStore, sessionStore, cfg.AdminUsername, cfg.AdminPasswordHash, logger.With("component", "admin")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	mux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /admin/login", s.rateLimitedHandler(s.adminH.Login))
	mux.HandleFunc("POST /api/webhooks/stripe", s.webhookH.HandleStripeWebhook)
	mux.HandleFunc("GET /payment/success", s.paymentH.Success)
	mux.HandleFunc("GET /health", s.healthHandler)

	// Routes requiring a user session
	authMW := middleware.RequireAuth(s.sessionStore)
	mux.Handle("POST /api/logout", authMW(http.HandlerFunc(s.authH.Logout)))
	mux.Handle("GET /api/me", authMW(http.HandlerFunc(s.authH.Me)))
	mux.Handle("POST /api/transcript", authMW(http.HandlerFunc(s.transcriptH.Fetch)))
	mux.Handle("POST /api/chat", authMW(http.HandlerFunc(s.chatH.Ask)))
	mux.Handle("POST /api/checkout", authMW(http.HandlerFunc(s.checkoutH.CreateCheckoutSession)))

	// Routes requiring an admin session
	adminMW := middleware.RequireAdmin(s.sessionStore)
	mux.Handle("GET /api/admin/stats", adminMW(http.HandlerFunc(s.adminH.Stats)))
	mux.Handle("GET /api/admin/users", adminMW(http.HandlerFunc(s.adminH.ListUsers)))
	mux.Handle("GET /api/admin/payments", adminMW(http.HandlerFunc(s.adminH.ListPayments)))
	mux.Handle("GET /ws/admin", adminMW(ws.HandleWebSocket(s.hub)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
