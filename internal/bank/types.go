// Package bank is the client for the BANKMOCK backend, the external banking
// collaborator. All calls are request/response over HTTP with a uniform
// success/failure envelope.
package bank

import "context"

// Balance is the current account balance.
type Balance struct {
	Balance     float64 `json:"balance"`
	AccountType string  `json:"accountType"`
}

// Transaction is one ledger entry.
type Transaction struct {
	TransactionID string  `json:"transactionId"`
	Type          string  `json:"type"` // CREDIT or DEBIT
	Amount        float64 `json:"amount"`
	Description   string  `json:"description,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// Account holds account master details.
type Account struct {
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	Branch        string `json:"branch,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	Status        string `json:"accountStatus,omitempty"`
}

// Cheque is the clearing status of a deposited cheque.
type Cheque struct {
	ChequeNumber          string  `json:"chequeNumber"`
	Amount                float64 `json:"amount"`
	Status                string  `json:"status"`
	ExpectedClearanceDate string  `json:"expectedClearanceDate,omitempty"`
}

// Customer is the backend's customer profile record.
type Customer struct {
	CustomerID    string `json:"customerId"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

// Gateway is the interface the workflow agents consume. Every method is
// scoped to one customer and returns either a typed result or an error; no
// partial results.
type Gateway interface {
	GetBalance(ctx context.Context, customerID string) (*Balance, error)
	GetTransactions(ctx context.Context, customerID string, limit int) ([]Transaction, error)
	GetAccount(ctx context.Context, customerID string) (*Account, error)
	GetChequeStatus(ctx context.Context, customerID, chequeNumber string) (*Cheque, error)
	GetCustomerProfile(ctx context.Context, customerID string) (*Customer, error)
}
