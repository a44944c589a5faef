package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/mosesmwila/zareat-api/internal/models"
)

type SubscriptionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Subscription, bool, error)
	GetPendingByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	GetLatestApprovedByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	HasActiveSubscription(ctx context.Context, userID int64, now time.Time) (bool, error)
	Create(ctx context.Context, subscription *models.Subscription) (int64, error)
	MarkApproved(ctx context.Context, id int64, startDate, expiryDate time.Time) (bool, error)
	SetInvoiceURL(ctx context.Context, id int64, invoiceURL string) error
	List(ctx context.Context) ([]*models.Subscription, error)
	ListWithInvoices(ctx context.Context) ([]*models.Subscription, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = "id, user_id, package, start_date, expiry_date, approved, invoice_url"

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (*models.Subscription, bool, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE id = $1"
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *subscriptionRepository) GetPendingByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE user_id = $1 AND approved = FALSE ORDER BY id DESC LIMIT 1"
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// GetLatestApprovedByUserID returns the approved subscription with the
// highest id for the user. Access decisions key off this row even when an
// older row carries a later expiry.
func (r *subscriptionRepository) GetLatestApprovedByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE user_id = $1 AND approved = TRUE ORDER BY id DESC LIMIT 1"
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *subscriptionRepository) HasActiveSubscription(ctx context.Context, userID int64, now time.Time) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND approved = TRUE AND expiry_date > $2)"
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, now).Scan(&exists)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return exists, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) (int64, error) {
	query := "INSERT INTO subscriptions (user_id, package, start_date, expiry_date, approved, invoice_url) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id"
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		subscription.UserID,
		subscription.Package,
		nullTime(subscription.StartDate),
		nullTime(subscription.ExpiryDate),
		subscription.Approved,
		subscription.InvoiceURL,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

// MarkApproved stamps the dates and flips the flag only if the row is still
// unapproved. Returns false when no row transitioned, so two concurrent
// approvals cannot both succeed.
func (r *subscriptionRepository) MarkApproved(ctx context.Context, id int64, startDate, expiryDate time.Time) (bool, error) {
	query := `
		UPDATE subscriptions
		SET approved = TRUE,
			start_date = $2,
			expiry_date = $3
		WHERE id = $1 AND approved = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, id, startDate, expiryDate)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return rows > 0, nil
}

func (r *subscriptionRepository) SetInvoiceURL(ctx context.Context, id int64, invoiceURL string) error {
	query := "UPDATE subscriptions SET invoice_url = $2 WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id, invoiceURL)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context) ([]*models.Subscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions ORDER BY id DESC"
	return r.scanList(ctx, query)
}

func (r *subscriptionRepository) ListWithInvoices(ctx context.Context) ([]*models.Subscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE invoice_url != '' ORDER BY id DESC"
	return r.scanList(ctx, query)
}

func (r *subscriptionRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	query := "SELECT " + subscriptionColumns + " FROM subscriptions WHERE approved = TRUE AND expiry_date < $1"
	return r.scanList(ctx, query, now)
}

func (r *subscriptionRepository) scanOne(row *sql.Row) (*models.Subscription, bool, error) {
	var subscription models.Subscription
	var startDate, expiryDate sql.NullTime
	err := row.Scan(
		&subscription.ID,
		&subscription.UserID,
		&subscription.Package,
		&startDate,
		&expiryDate,
		&subscription.Approved,
		&subscription.InvoiceURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	subscription.StartDate = startDate.Time
	subscription.ExpiryDate = expiryDate.Time
	return &subscription, true, nil
}

func (r *subscriptionRepository) scanList(ctx context.Context, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var subscriptions []*models.Subscription
	for rows.Next() {
		var subscription models.Subscription
		var startDate, expiryDate sql.NullTime
		err := rows.Scan(
			&subscription.ID,
			&subscription.UserID,
			&subscription.Package,
			&startDate,
			&expiryDate,
			&subscription.Approved,
			&subscription.InvoiceURL,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		subscription.StartDate = startDate.Time
		subscription.ExpiryDate = expiryDate.Time
		subscriptions = append(subscriptions, &subscription)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return subscriptions, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
