package models

import (
	"time"
)

const (
	PackageBasic   = "Basic"
	PackagePremium = "Premium"
)

// Subscription is a single membership record. StartDate and ExpiryDate are
// zero until the record is approved; once approved, ExpiryDate is always
// exactly 30 days after StartDate.
type Subscription struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Package    string    `db:"package" json:"package"`
	StartDate  time.Time `db:"start_date" json:"start_date,omitempty"`
	ExpiryDate time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Approved   bool      `db:"approved" json:"approved"`
	InvoiceURL string    `db:"invoice_url" json:"invoice_url"`
}

func ValidPackage(name string) bool {
	return name == PackageBasic || name == PackagePremium
}
