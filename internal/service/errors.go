package service

import "errors"

var (
	ErrSubscriptionNotFound        = errors.New("subscription not found")
	ErrAlreadyApproved             = errors.New("subscription is already approved")
	ErrDuplicatePendingRequest     = errors.New("a pending subscription request already exists for this user")
	ErrDuplicateActiveSubscription = errors.New("user already has an active subscription")
	ErrInvalidPackage              = errors.New("unknown subscription package")
	ErrUnsupportedFileType         = errors.New("unsupported invoice file type")
)
