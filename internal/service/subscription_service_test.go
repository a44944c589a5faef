package service

import (
	"context"
	"testing"
	"time"

	"github.com/mosesmwila/zareat-api/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestSubscriptionService(t *testing.T, now time.Time) (*subscriptionService, *fakeSubscriptionRepo, *fakeUserRepo, *recordingNotifier) {
	t.Helper()
	subs := newFakeSubscriptionRepo()
	users := newFakeUserRepo(&models.User{ID: 7, Name: "Moses", Email: "moses@example.com"})
	notifier := &recordingNotifier{}

	svc := NewSubscriptionService(subs, users, notifier).(*subscriptionService)
	svc.now = func() time.Time { return now }
	return svc, subs, users, notifier
}

func TestRequestSubscription(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, subs, _, notifier := newTestSubscriptionService(t, now)

	id, err := svc.RequestSubscription(ctx, 7, models.PackageBasic)
	require.NoError(t, err)
	require.NotZero(t, id)

	created, ok, err := subs.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, created.Approved)
	require.True(t, created.StartDate.IsZero())
	require.True(t, created.ExpiryDate.IsZero())
	require.Empty(t, notifier.sent, "a pending request must not notify")
}

func TestRequestSubscriptionDuplicatePending(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestSubscriptionService(t, time.Now())

	_, err := svc.RequestSubscription(ctx, 7, models.PackageBasic)
	require.NoError(t, err)

	_, err = svc.RequestSubscription(ctx, 7, models.PackagePremium)
	require.ErrorIs(t, err, ErrDuplicatePendingRequest)
}

func TestRequestSubscriptionInvalidPackage(t *testing.T) {
	svc, _, _, _ := newTestSubscriptionService(t, time.Now())

	_, err := svc.RequestSubscription(context.Background(), 7, "Platinum")
	require.ErrorIs(t, err, ErrInvalidPackage)
}

func TestApproveStampsDatesAndNotifies(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, subs, _, notifier := newTestSubscriptionService(t, now)

	id, err := svc.RequestSubscription(ctx, 7, models.PackagePremium)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, id))

	approved, ok, err := subs.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, approved.Approved)
	require.Equal(t, now, approved.StartDate)
	require.Equal(t, 30*24*time.Hour, approved.ExpiryDate.Sub(approved.StartDate))

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "moses@example.com", notifier.sent[0].To)
	require.Equal(t, "Subscription Approved", notifier.sent[0].Subject)
	require.Contains(t, notifier.sent[0].Body, approved.ExpiryDate.Format("2006-01-02"))
}

func TestApproveNotFound(t *testing.T) {
	svc, _, _, _ := newTestSubscriptionService(t, time.Now())

	err := svc.Approve(context.Background(), 99)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestApproveAlreadyApproved(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, subs, _, notifier := newTestSubscriptionService(t, now)

	id, err := svc.RequestSubscription(ctx, 7, models.PackageBasic)
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, id))

	first, _, err := subs.GetByID(ctx, id)
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(48 * time.Hour) }
	err = svc.Approve(ctx, id)
	require.ErrorIs(t, err, ErrAlreadyApproved)

	// The rejected second attempt must not restamp the dates or re-notify.
	second, _, err := subs.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, first.StartDate, second.StartDate)
	require.Equal(t, first.ExpiryDate, second.ExpiryDate)
	require.Len(t, notifier.sent, 1)
}

func TestApproveNotifierFailureDoesNotFailApproval(t *testing.T) {
	ctx := context.Background()
	svc, subs, _, notifier := newTestSubscriptionService(t, time.Now())
	notifier.err = context.DeadlineExceeded

	id, err := svc.RequestSubscription(ctx, 7, models.PackageBasic)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, id))

	approved, _, err := subs.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, approved.Approved)
}

func TestAddApprovedSubscription(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, subs, _, notifier := newTestSubscriptionService(t, now)

	id, err := svc.AddApprovedSubscription(ctx, 7, models.PackagePremium)
	require.NoError(t, err)

	created, ok, err := subs.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, created.Approved)
	require.Equal(t, now, created.StartDate)
	require.Equal(t, now.Add(30*24*time.Hour), created.ExpiryDate)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "Subscription Approved", notifier.sent[0].Subject)
}

func TestAddApprovedSubscriptionDuplicateActive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestSubscriptionService(t, now)

	_, err := svc.AddApprovedSubscription(ctx, 7, models.PackageBasic)
	require.NoError(t, err)

	_, err = svc.AddApprovedSubscription(ctx, 7, models.PackagePremium)
	require.ErrorIs(t, err, ErrDuplicateActiveSubscription)
}

func TestAddApprovedSubscriptionAllowedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestSubscriptionService(t, now)

	_, err := svc.AddApprovedSubscription(ctx, 7, models.PackageBasic)
	require.NoError(t, err)

	// Once the first term has lapsed, a new admin add goes through.
	svc.now = func() time.Time { return now.Add(31 * 24 * time.Hour) }
	_, err = svc.AddApprovedSubscription(ctx, 7, models.PackagePremium)
	require.NoError(t, err)
}

func TestListSubscriptionsResolvesNames(t *testing.T) {
	ctx := context.Background()
	svc, subs, _, _ := newTestSubscriptionService(t, time.Now())

	_, err := subs.Create(ctx, &models.Subscription{UserID: 7, Package: models.PackageBasic})
	require.NoError(t, err)
	_, err = subs.Create(ctx, &models.Subscription{UserID: 42, Package: models.PackagePremium})
	require.NoError(t, err)

	infos, err := svc.ListSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Newest first; unknown users render as "Unknown".
	require.Equal(t, int64(42), infos[0].UserID)
	require.Equal(t, "Unknown", infos[0].UserName)
	require.Equal(t, "Moses", infos[1].UserName)
	require.Nil(t, infos[1].StartDate, "pending rows carry no dates")
}

func TestListInvoicesFiltersEmptyURLs(t *testing.T) {
	ctx := context.Background()
	svc, subs, _, _ := newTestSubscriptionService(t, time.Now())

	_, err := subs.Create(ctx, &models.Subscription{UserID: 7, Package: models.PackageBasic})
	require.NoError(t, err)
	withInvoice, err := subs.Create(ctx, &models.Subscription{UserID: 7, Package: models.PackageBasic, InvoiceURL: "https://files.example.com/invoices/a.pdf"})
	require.NoError(t, err)

	infos, err := svc.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, withInvoice, infos[0].ID)
}
