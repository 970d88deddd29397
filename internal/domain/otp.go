package domain

import "time"

// OTPRecord is the single active one-time password for a customer.
// Regeneration overwrites the previous record; a record is consumable exactly
// once and only before expiry.
type OTPRecord struct {
	OTP        string    `json:"otp"`
	CustomerID string    `json:"customerId"`
	Purpose    string    `json:"purpose"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Used       bool      `json:"used"`
}

// Expired reports whether the record is past its expiry at the given time.
func (r OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
