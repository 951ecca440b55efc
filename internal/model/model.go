package model

import "time"

// Subscription plan names.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Usage allowances granted per plan. Enterprise users get the 999 marker
// value and are never decremented.
const (
	FreeAttempts       = 5
	ProAttempts        = 100
	EnterpriseAttempts = 999
)

type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Password          string     `json:"-"`
	Plan              string     `json:"plan"`
	AttemptsRemaining int64      `json:"attempts_remaining"`
	SubscriptionDate  *time.Time `json:"subscription_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Session is the server-side pointer to the active user. Admin sessions
// carry no user id.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Payment records one completed checkout. ID is the payment vendor's
// checkout session identifier.
type Payment struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Plan     string    `json:"plan"`
	Amount   int64     `json:"amount"`
	Currency string    `json:"currency"`
	Status   string    `json:"status"`
	PaidAt   time.Time `json:"date"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalRevenue    int64 `json:"total_revenue"`
	MonthlyRevenue  int64 `json:"monthly_revenue"`
	TotalUsers      int64 `json:"total_users"`
	FreeUsers       int64 `json:"free_users"`
	ProUsers        int64 `json:"pro_users"`
	EnterpriseUsers int64 `json:"enterprise_users"`
}
