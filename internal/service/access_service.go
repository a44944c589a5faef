package service

import (
	"context"
	"time"

	"github.com/mosesmwila/zareat-api/internal/models"
	"github.com/mosesmwila/zareat-api/internal/repository"
)

type AccessOutcome string

const (
	AccessNotAuthenticated AccessOutcome = "not_authenticated"
	AccessNoSubscription   AccessOutcome = "no_active_subscription"
	AccessExpired          AccessOutcome = "expired"
	AccessGranted          AccessOutcome = "granted"
)

const (
	msgLogIn          = "Please log in to view this content."
	msgNoSubscription = "You do not have an active subscription."
	msgExpired        = "Your subscription has expired. Please renew to regain access."
)

// AccessDecision is the result of one gate evaluation. Subscription is set
// only for the Expired and Granted outcomes.
type AccessDecision struct {
	Outcome      AccessOutcome        `json:"outcome"`
	Message      string               `json:"message,omitempty"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

type AccessService interface {
	EvaluateAccess(ctx context.Context, userID int64) (*AccessDecision, error)
}

type accessService struct {
	s   repository.SubscriptionRepository
	now func() time.Time
}

func NewAccessService(s repository.SubscriptionRepository) AccessService {
	return &accessService{
		s:   s,
		now: time.Now,
	}
}

// EvaluateAccess re-derives the gate decision from current store state on
// every call; nothing is cached. The gating row is the approved
// subscription with the highest id, even if an older row expires later.
func (s *accessService) EvaluateAccess(ctx context.Context, userID int64) (*AccessDecision, error) {
	if userID == 0 {
		return &AccessDecision{Outcome: AccessNotAuthenticated, Message: msgLogIn}, nil
	}

	subscription, isExist, err := s.s.GetLatestApprovedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return &AccessDecision{Outcome: AccessNoSubscription, Message: msgNoSubscription}, nil
	}

	if s.now().After(subscription.ExpiryDate) {
		return &AccessDecision{Outcome: AccessExpired, Message: msgExpired, Subscription: subscription}, nil
	}

	return &AccessDecision{Outcome: AccessGranted, Subscription: subscription}, nil
}
