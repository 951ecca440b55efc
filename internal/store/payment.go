package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/clipchat/internal/model"
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func scanPayment(scanner interface{ Scan(...any) error }) (*model.Payment, error) {
	var p model.Payment
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Username, &p.Plan, &p.Amount,
		&p.Currency, &p.Status, &p.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const paymentCols = `id, user_id, username, plan, amount, currency, status, paid_at`

// Create inserts one payment row. The id is the vendor checkout session
// identifier; a duplicate id is an error, not an overwrite.
func (s *PaymentStore) Create(p model.Payment) (*model.Payment, error) {
	_, err := s.db.Exec(
		`INSERT INTO payments (id, user_id, username, plan, amount, currency, status, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Username, p.Plan, p.Amount, p.Currency, p.Status, p.PaidAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return s.GetByID(p.ID)
}

func (s *PaymentStore) GetByID(id string) (*model.Payment, error) {
	row := s.db.QueryRow(`SELECT `+paymentCols+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// TotalRevenue sums all payment amounts. No currency conversion is applied;
// everything is recorded in one currency.
func (s *PaymentStore) TotalRevenue() (int64, error) {
	var total int64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total revenue: %w", err)
	}
	return total, nil
}

// RevenueBetween sums payment amounts with paid_at in [start, end).
func (s *PaymentStore) RevenueBetween(start, end time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE paid_at >= ? AND paid_at < ?`,
		start.UTC(), end.UTC(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("revenue between: %w", err)
	}
	return total, nil
}

func (s *PaymentStore) List() ([]*model.Payment, error) {
	rows, err := s.db.Query(`SELECT ` + paymentCols + ` FROM payments ORDER BY paid_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}
