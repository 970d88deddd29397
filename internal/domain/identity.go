// Package domain contains core domain types for the SwiftBank assistant.
package domain

// CustomerIdentity describes the authenticated customer for a chat turn.
// It is supplied by the identity layer per request and never mutated
// mid-turn.
type CustomerIdentity struct {
	CustomerID    string `json:"customerId"`
	AccountNumber string `json:"accountNumber"`
	Mobile        string `json:"mobile"`
	Name          string `json:"name"`
}

// MaskedMobile returns the registered mobile with all but the last four
// digits hidden.
func (c CustomerIdentity) MaskedMobile() string {
	if len(c.Mobile) < 4 {
		return "****"
	}
	return "****" + c.Mobile[len(c.Mobile)-4:]
}
