package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mosesmwila/zareat-api/internal/models"
)

// fakeSubscriptionRepo is an in-memory SubscriptionRepository with the
// same query semantics as the Postgres implementation.
type fakeSubscriptionRepo struct {
	subs   []*models.Subscription
	nextID int64
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{nextID: 1}
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id int64) (*models.Subscription, bool, error) {
	for _, s := range r.subs {
		if s.ID == id {
			copied := *s
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeSubscriptionRepo) GetPendingByUserID(_ context.Context, userID int64) (*models.Subscription, bool, error) {
	for i := len(r.subs) - 1; i >= 0; i-- {
		s := r.subs[i]
		if s.UserID == userID && !s.Approved {
			copied := *s
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeSubscriptionRepo) GetLatestApprovedByUserID(_ context.Context, userID int64) (*models.Subscription, bool, error) {
	var latest *models.Subscription
	for _, s := range r.subs {
		if s.UserID == userID && s.Approved && (latest == nil || s.ID > latest.ID) {
			latest = s
		}
	}
	if latest == nil {
		return nil, false, nil
	}
	copied := *latest
	return &copied, true, nil
}

func (r *fakeSubscriptionRepo) HasActiveSubscription(_ context.Context, userID int64, now time.Time) (bool, error) {
	for _, s := range r.subs {
		if s.UserID == userID && s.Approved && s.ExpiryDate.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, subscription *models.Subscription) (int64, error) {
	copied := *subscription
	copied.ID = r.nextID
	r.nextID++
	r.subs = append(r.subs, &copied)
	return copied.ID, nil
}

func (r *fakeSubscriptionRepo) MarkApproved(_ context.Context, id int64, startDate, expiryDate time.Time) (bool, error) {
	for _, s := range r.subs {
		if s.ID == id && !s.Approved {
			s.Approved = true
			s.StartDate = startDate
			s.ExpiryDate = expiryDate
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubscriptionRepo) SetInvoiceURL(_ context.Context, id int64, invoiceURL string) error {
	for _, s := range r.subs {
		if s.ID == id {
			s.InvoiceURL = invoiceURL
			return nil
		}
	}
	return fmt.Errorf("subscription %d not found", id)
}

func (r *fakeSubscriptionRepo) List(_ context.Context) ([]*models.Subscription, error) {
	out := make([]*models.Subscription, 0, len(r.subs))
	for i := len(r.subs) - 1; i >= 0; i-- {
		copied := *r.subs[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) ListWithInvoices(_ context.Context) ([]*models.Subscription, error) {
	var out []*models.Subscription
	for i := len(r.subs) - 1; i >= 0; i-- {
		if r.subs[i].InvoiceURL != "" {
			copied := *r.subs[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) ListExpired(_ context.Context, now time.Time) ([]*models.Subscription, error) {
	var out []*models.Subscription
	for _, s := range r.subs {
		if s.Approved && s.ExpiryDate.Before(now) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int64]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, bool, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}
	copied := *u
	return &copied, true, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	id := int64(len(r.users) + 1)
	copied := *user
	copied.ID = id
	r.users[id] = &copied
	return id, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingNotifier struct {
	sent []sentMail
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, body string) error {
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return n.err
}
