package transfer

import "time"

type SubscriptionRequest struct {
	Package string `json:"package"`
}

type AddSubscriptionRequest struct {
	UserID  int64  `json:"user_id"`
	Package string `json:"package"`
}

// SubscriptionInfo is an admin list row with the owner's display name
// resolved. Dates are pointers so pending rows render without them.
type SubscriptionInfo struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	UserName   string     `json:"user_name"`
	Package    string     `json:"package"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Approved   bool       `json:"approved"`
	InvoiceURL string     `json:"invoice_url,omitempty"`
}
