package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mosesmwila/zareat-api/internal/models"
	"github.com/mosesmwila/zareat-api/internal/notify"
	"github.com/mosesmwila/zareat-api/internal/repository"
	"github.com/mosesmwila/zareat-api/internal/transfer"
)

// subscriptionTerm is plain calendar-day addition from the approval
// instant, not billing-cycle aware.
const subscriptionTerm = 30 * 24 * time.Hour

type SubscriptionService interface {
	RequestSubscription(ctx context.Context, userID int64, packageName string) (int64, error)
	AddApprovedSubscription(ctx context.Context, userID int64, packageName string) (int64, error)
	Approve(ctx context.Context, subscriptionID int64) error
	ListSubscriptions(ctx context.Context) ([]*transfer.SubscriptionInfo, error)
	ListInvoices(ctx context.Context) ([]*transfer.SubscriptionInfo, error)
}

type subscriptionService struct {
	s   repository.SubscriptionRepository
	u   repository.UserRepository
	n   notify.Notifier
	now func() time.Time
}

func NewSubscriptionService(s repository.SubscriptionRepository, u repository.UserRepository, n notify.Notifier) SubscriptionService {
	return &subscriptionService{
		s:   s,
		u:   u,
		n:   n,
		now: time.Now,
	}
}

func (s *subscriptionService) RequestSubscription(ctx context.Context, userID int64, packageName string) (int64, error) {
	if !models.ValidPackage(packageName) {
		return 0, ErrInvalidPackage
	}

	_, hasPending, err := s.s.GetPendingByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("checking pending requests: %w", err)
	}
	if hasPending {
		return 0, ErrDuplicatePendingRequest
	}

	id, err := s.s.Create(ctx, &models.Subscription{
		UserID:  userID,
		Package: packageName,
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *subscriptionService) AddApprovedSubscription(ctx context.Context, userID int64, packageName string) (int64, error) {
	if !models.ValidPackage(packageName) {
		return 0, ErrInvalidPackage
	}

	now := s.now()
	active, err := s.s.HasActiveSubscription(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("checking active subscriptions: %w", err)
	}
	if active {
		return 0, ErrDuplicateActiveSubscription
	}

	expiry := now.Add(subscriptionTerm)
	id, err := s.s.Create(ctx, &models.Subscription{
		UserID:     userID,
		Package:    packageName,
		StartDate:  now,
		ExpiryDate: expiry,
		Approved:   true,
	})
	if err != nil {
		return 0, err
	}

	s.notifyApproved(ctx, userID, expiry)
	return id, nil
}

func (s *subscriptionService) Approve(ctx context.Context, subscriptionID int64) error {
	subscription, isExist, err := s.s.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrSubscriptionNotFound
	}
	if subscription.Approved {
		return ErrAlreadyApproved
	}

	now := s.now()
	expiry := now.Add(subscriptionTerm)

	// The update is conditional on the row still being unapproved, so a
	// racing second approval loses here instead of double-notifying.
	updated, err := s.s.MarkApproved(ctx, subscriptionID, now, expiry)
	if err != nil {
		return err
	}
	if !updated {
		return ErrAlreadyApproved
	}

	s.notifyApproved(ctx, subscription.UserID, expiry)
	return nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context) ([]*transfer.SubscriptionInfo, error) {
	subscriptions, err := s.s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveNames(ctx, subscriptions), nil
}

func (s *subscriptionService) ListInvoices(ctx context.Context) ([]*transfer.SubscriptionInfo, error) {
	subscriptions, err := s.s.ListWithInvoices(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveNames(ctx, subscriptions), nil
}

// notifyApproved resolves the user's address and sends the approval mail.
// Delivery problems are logged and swallowed; the approval itself already
// happened.
func (s *subscriptionService) notifyApproved(ctx context.Context, userID int64, expiry time.Time) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil || !isExist {
		slog.Info("skipping approval notification, user not resolved", "user_id", userID)
		return
	}

	body := fmt.Sprintf("Your subscription has been approved and is active until %s", expiry.Format("2006-01-02 15:04:05"))
	if err := s.n.Send(ctx, user.Email, "Subscription Approved", body); err != nil {
		slog.Info("approval notification failed", "user_id", userID, "error", err.Error())
	}
}

func (s *subscriptionService) resolveNames(ctx context.Context, subscriptions []*models.Subscription) []*transfer.SubscriptionInfo {
	infos := make([]*transfer.SubscriptionInfo, 0, len(subscriptions))
	for _, sub := range subscriptions {
		info := &transfer.SubscriptionInfo{
			ID:         sub.ID,
			UserID:     sub.UserID,
			UserName:   "Unknown",
			Package:    sub.Package,
			Approved:   sub.Approved,
			InvoiceURL: sub.InvoiceURL,
		}
		if sub.Approved {
			start, expiry := sub.StartDate, sub.ExpiryDate
			info.StartDate = &start
			info.ExpiryDate = &expiry
		}
		if user, isExist, err := s.u.GetByID(ctx, sub.UserID); err == nil && isExist {
			info.UserName = user.Name
		}
		infos = append(infos, info)
	}
	return infos
}
