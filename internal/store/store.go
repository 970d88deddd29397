// Package store provides in-memory storage for conversations, cases,
// simulated cards, and OTP records.
package store

import (
	"time"

	"github.com/swiftbank/assist/internal/domain"
)

// OTPResult is the outcome of an OTP verification attempt.
type OTPResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Store defines keyed storage for all assistant state. Lookups on unknown
// keys return nil, never an error. Implementations must be safe for
// concurrent use; returned records are copies, so callers mutate freely and
// persist through the explicit save/update operations.
type Store interface {
	// CreateConversation mints a new session with an empty transcript and an
	// idle workflow.
	CreateConversation(customerID string, identity *domain.CustomerIdentity) *domain.Conversation

	// GetConversation retrieves a conversation by session ID, or nil.
	GetConversation(sessionID string) *domain.Conversation

	// SaveConversation upserts a conversation and bumps its UpdatedAt.
	SaveConversation(conv *domain.Conversation)

	// AllConversations lists every conversation, most recently updated first.
	AllConversations() []*domain.Conversation

	// CreateCase persists a new complaint case with status OPEN and a
	// transcript snapshot.
	CreateCase(customerID, customerName, caseType, description string, entities domain.Entities, transcript []domain.Message) *domain.AgentCase

	// GetCase retrieves a case by ID, or nil.
	GetCase(caseID string) *domain.AgentCase

	// CasesForCustomer lists the customer's cases, most recently updated first.
	CasesForCustomer(customerID string) []*domain.AgentCase

	// AllCases lists every case, most recently updated first.
	AllCases() []*domain.AgentCase

	// UpdateCase merges a partial update into a case and bumps its UpdatedAt.
	// Returns the updated case, or nil if the case does not exist.
	UpdateCase(caseID string, update domain.CaseUpdate) *domain.AgentCase

	// CardForCustomer returns the customer's simulated card, lazily creating
	// it (default BLOCKED) on first access.
	CardForCustomer(customerID string) *domain.SimulatedCard

	// UpdateCardStatus sets the card status and returns the updated card.
	UpdateCardStatus(customerID string, status domain.CardStatus) *domain.SimulatedCard

	// GenerateOTP mints a fresh 6-digit OTP for the customer, overwriting any
	// prior record.
	GenerateOTP(customerID, purpose string) *domain.OTPRecord

	// VerifyOTP checks a submitted code against the customer's active record
	// and consumes it on success. Failure reasons, in precedence order: no
	// OTP found, already used, expired, incorrect.
	VerifyOTP(customerID, submitted string) OTPResult

	// CleanupExpiredOTPs drops records past expiry and reports how many were
	// removed. Hygiene only; VerifyOTP enforces expiry on its own.
	CleanupExpiredOTPs(now time.Time) int
}
