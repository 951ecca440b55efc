package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/clipchat/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var subDate sql.NullTime
	err := scanner.Scan(
		&u.ID, &u.Username, &u.Password, &u.Plan, &u.AttemptsRemaining,
		&subDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if subDate.Valid {
		u.SubscriptionDate = &subDate.Time
	}
	return &u, nil
}

const userCols = `id, username, password, plan, attempts_remaining, subscription_date, created_at, updated_at`

// Create inserts a new free-tier user with the default attempt allowance.
func (s *UserStore) Create(username, password string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, username, password, plan, attempts_remaining) VALUES (?, ?, ?, ?, ?)`,
		id, username, password, model.PlanFree, model.FreeAttempts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByUsername looks up a user by exact, case-sensitive username.
func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *UserStore) UpdatePlan(id, plan string) error {
	_, err := s.db.Exec(
		`UPDATE users SET plan = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		plan, id,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// Upgrade applies a paid plan: new plan name, reset attempt allowance, and
// the subscription start timestamp.
func (s *UserStore) Upgrade(id, plan string, attempts int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE users SET plan = ?, attempts_remaining = ?, subscription_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		plan, attempts, at, id,
	)
	if err != nil {
		return fmt.Errorf("upgrade user: %w", err)
	}
	return nil
}

// DecrementAttempts consumes one attempt, stopping at zero.
func (s *UserStore) DecrementAttempts(id string) error {
	_, err := s.db.Exec(
		`UPDATE users SET attempts_remaining = attempts_remaining - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND attempts_remaining > 0`,
		id,
	)
	if err != nil {
		return fmt.Errorf("decrement attempts: %w", err)
	}
	return nil
}

func (s *UserStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CountByPlan returns the number of users per plan value.
func (s *UserStore) CountByPlan() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT plan, COUNT(*) FROM users GROUP BY plan`)
	if err != nil {
		return nil, fmt.Errorf("count by plan: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var plan string
		var n int64
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, fmt.Errorf("scan plan count: %w", err)
		}
		counts[plan] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan counts: %w", err)
	}
	return counts, nil
}

func (s *UserStore) List() ([]*model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
