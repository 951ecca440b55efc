// Package billing holds the canonical payment reconciliation routine. Both
// the Stripe webhook and the checkout redirect flow call it; the payment
// row keyed by the vendor session id makes the second caller a no-op.
package billing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
)

// Currency for all recorded payments. No conversion happens anywhere.
const Currency = "INR"

var (
	ErrUnknownPlan  = errors.New("unknown plan")
	ErrUserNotFound = errors.New("user not found")
)

// PlanAmount returns the charge for a paid plan in currency minor-unit-free
// form. Only paid plans are valid reconciliation targets.
func PlanAmount(plan string) (int64, bool) {
	switch plan {
	case model.PlanPro:
		return 99, true
	case model.PlanEnterprise:
		return 999, true
	}
	return 0, false
}

// PlanAttempts returns the usage allowance granted by a paid plan.
func PlanAttempts(plan string) int64 {
	if plan == model.PlanEnterprise {
		return model.EnterpriseAttempts
	}
	return model.ProAttempts
}

// Notifier receives each newly recorded payment.
type Notifier func(model.Payment)

type Reconciler struct {
	users    *store.UserStore
	payments *store.PaymentStore
	logger   *slog.Logger
	notify   Notifier
}

func NewReconciler(users *store.UserStore, payments *store.PaymentStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		users:    users,
		payments: payments,
		logger:   logger,
	}
}

// SetNotifier registers a hook called once per newly recorded payment.
// Replays of an already reconciled session do not fire it.
func (r *Reconciler) SetNotifier(fn Notifier) {
	r.notify = fn
}

// Apply records a completed checkout: upgrade the user's plan, reset their
// attempt allowance, stamp the subscription date, and append one payment
// row. Applying the same session id twice returns the original payment
// without touching the user again.
func (r *Reconciler) Apply(sessionID, plan, userID string) (*model.Payment, error) {
	amount, ok := PlanAmount(plan)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	existing, err := r.payments.GetByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}
	if existing != nil {
		r.logger.Debug("payment already reconciled", "session_id", sessionID)
		return existing, nil
	}

	user, err := r.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
	}

	now := time.Now().UTC()
	if err := r.users.Upgrade(user.ID, plan, PlanAttempts(plan), now); err != nil {
		return nil, err
	}

	payment, err := r.payments.Create(model.Payment{
		ID:       sessionID,
		UserID:   user.ID,
		Username: user.Username,
		Plan:     plan,
		Amount:   amount,
		Currency: Currency,
		Status:   "completed",
		PaidAt:   now,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("payment reconciled",
		"session_id", sessionID, "user_id", user.ID, "plan", plan, "amount", amount)

	if r.notify != nil {
		r.notify(*payment)
	}
	return payment, nil
}
