// Package billing implements the optional Pro-plan billing gate: a
// subscription store plus Stripe checkout and webhook handling. The whole
// package is inert unless Stripe keys are configured.
package billing

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/swiftconvert/server/pkg/utils"
)

const subscriptionSchema = `
CREATE TABLE IF NOT EXISTS subscriptions (
	email TEXT PRIMARY KEY,
	stripe_customer_id TEXT,
	stripe_subscription_id TEXT,
	status TEXT,
	current_period_end INTEGER,
	updated_at INTEGER
);
`

// Subscription is one billing record, keyed by customer email.
type Subscription struct {
	Email                string `json:"email"`
	StripeCustomerID     string `json:"stripe_customer_id"`
	StripeSubscriptionID string `json:"stripe_subscription_id"`
	Status               string `json:"status"`
	CurrentPeriodEnd     int64  `json:"current_period_end"`
	UpdatedAt            int64  `json:"updated_at"`
}

// Store persists subscriptions in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the billing database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, utils.NewSystemError("failed to open billing database", err).WithContext("path", path)
	}
	if _, err := db.Exec(subscriptionSchema); err != nil {
		db.Close()
		return nil, utils.NewSystemError("failed to apply billing schema", err)
	}
	return &Store{db: db}, nil
}

// Upsert inserts or replaces the subscription record for email.
func (s *Store) Upsert(ctx context.Context, sub Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (email, stripe_customer_id, stripe_subscription_id, status, current_period_end, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			stripe_customer_id=excluded.stripe_customer_id,
			stripe_subscription_id=excluded.stripe_subscription_id,
			status=excluded.status,
			current_period_end=excluded.current_period_end,
			updated_at=excluded.updated_at`,
		sub.Email, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.Status,
		sub.CurrentPeriodEnd, time.Now().Unix())
	if err != nil {
		return utils.NewSystemError("failed to store subscription", err).WithContext("email", sub.Email)
	}
	return nil
}

// Get returns the subscription for email, or nil when none exists.
func (s *Store) Get(ctx context.Context, email string) (*Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT email, stripe_customer_id, stripe_subscription_id, status, current_period_end, updated_at
		FROM subscriptions WHERE email = ?`, email)

	var sub Subscription
	err := row.Scan(&sub.Email, &sub.StripeCustomerID, &sub.StripeSubscriptionID,
		&sub.Status, &sub.CurrentPeriodEnd, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewSystemError("failed to load subscription", err).WithContext("email", email)
	}
	return &sub, nil
}

// IsActive reports whether email has an active subscription whose period
// has not lapsed.
func (s *Store) IsActive(ctx context.Context, email string) (bool, error) {
	sub, err := s.Get(ctx, email)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}
	return sub.Status == "active" && sub.CurrentPeriodEnd > time.Now().Unix(), nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
