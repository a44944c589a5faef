package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mosesmwila/zareat-api/internal/notify"
	"github.com/mosesmwila/zareat-api/internal/repository"
)

// ExpirationJob is the daily sweep over approved subscriptions whose
// expiry has passed. It only notifies; it never mutates rows. A row that
// stays expired gets a notification on every run.
type ExpirationJob struct {
	sr repository.SubscriptionRepository
	ur repository.UserRepository
	n  notify.Notifier
}

func NewExpirationJob(
	sr repository.SubscriptionRepository,
	ur repository.UserRepository,
	n notify.Notifier) *ExpirationJob {
	return &ExpirationJob{
		sr: sr,
		ur: ur,
		n:  n,
	}
}

// CheckExpirations is the cron entry point. Failures are logged; the next
// scheduled run retries from scratch.
func (c *ExpirationJob) CheckExpirations() {
	ctx := context.Background()
	if err := c.Sweep(ctx, time.Now()); err != nil {
		slog.Info("expiration sweep failed", "error", err.Error())
	}
}

func (c *ExpirationJob) Sweep(ctx context.Context, now time.Time) error {
	expired, err := c.sr.ListExpired(ctx, now)
	if err != nil {
		return err
	}

	for _, subscription := range expired {
		user, isExist, err := c.ur.GetByID(ctx, subscription.UserID)
		if err != nil || !isExist {
			slog.Info("skipping expiry notification, user not resolved", "user_id", subscription.UserID)
			continue
		}

		body := fmt.Sprintf("Your subscription expired on %s. Please renew your subscription.",
			subscription.ExpiryDate.Format("2006-01-02 15:04:05"))
		if err := c.n.Send(ctx, user.Email, "Subscription Expired", body); err != nil {
			slog.Info("expiry notification failed", "user_id", subscription.UserID, "error", err.Error())
		}
	}
	return nil
}
