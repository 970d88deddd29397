package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/swiftbank/assist/internal/domain"
)

// Memory is the process-lifetime in-memory Store. Each entity family lives
// in its own RWMutex-guarded map; conversations are keyed by session ID,
// everything else by customer or record ID.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
	cases         map[string]*domain.AgentCase
	cards         map[string]*domain.SimulatedCard
	otps          map[string]*domain.OTPRecord

	otpTTL time.Duration
	now    func() time.Time
}

var _ Store = (*Memory)(nil)

// DefaultOTPTTL is how long a generated OTP stays valid.
const DefaultOTPTTL = 5 * time.Minute

// NewMemory creates an empty in-memory store. A non-positive otpTTL falls
// back to DefaultOTPTTL.
func NewMemory(otpTTL time.Duration) *Memory {
	if otpTTL <= 0 {
		otpTTL = DefaultOTPTTL
	}
	return &Memory{
		conversations: make(map[string]*domain.Conversation),
		cases:         make(map[string]*domain.AgentCase),
		cards:         make(map[string]*domain.SimulatedCard),
		otps:          make(map[string]*domain.OTPRecord),
		otpTTL:        otpTTL,
		now:           time.Now,
	}
}

// CreateConversation mints a new session with an empty transcript.
func (m *Memory) CreateConversation(customerID string, identity *domain.CustomerIdentity) *domain.Conversation {
	now := m.now()
	conv := &domain.Conversation{
		SessionID:     makeID("SESSION", 5),
		CustomerID:    customerID,
		Identity:      identity,
		Messages:      []domain.Message{},
		WorkflowState: domain.IdleWorkflow(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	m.mu.Lock()
	m.conversations[conv.SessionID] = cloneConversation(conv)
	m.mu.Unlock()

	return conv
}

// GetConversation retrieves a conversation copy by session ID, or nil.
func (m *Memory) GetConversation(sessionID string) *domain.Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.conversations[sessionID]
	if !ok {
		return nil
	}
	return cloneConversation(conv)
}

// SaveConversation upserts a conversation and bumps UpdatedAt.
func (m *Memory) SaveConversation(conv *domain.Conversation) {
	conv.UpdatedAt = m.now()

	m.mu.Lock()
	m.conversations[conv.SessionID] = cloneConversation(conv)
	m.mu.Unlock()
}

// AllConversations lists conversations, most recently updated first.
func (m *Memory) AllConversations() []*domain.Conversation {
	m.mu.RLock()
	out := make([]*domain.Conversation, 0, len(m.conversations))
	for _, conv := range m.conversations {
		out = append(out, cloneConversation(conv))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// CreateCase persists a new OPEN case with a transcript snapshot.
func (m *Memory) CreateCase(customerID, customerName, caseType, description string, entities domain.Entities, transcript []domain.Message) *domain.AgentCase {
	now := m.now()
	snapshot := make([]domain.Message, len(transcript))
	copy(snapshot, transcript)

	c := &domain.AgentCase{
		CaseID:       makeID("CASE", 5),
		CustomerID:   customerID,
		CustomerName: customerName,
		Type:         caseType,
		Description:  description,
		Status:       domain.CaseOpen,
		Entities:     entities,
		Transcript:   snapshot,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m.mu.Lock()
	m.cases[c.CaseID] = cloneCase(c)
	m.mu.Unlock()

	return c
}

// GetCase retrieves a case copy by ID, or nil.
func (m *Memory) GetCase(caseID string) *domain.AgentCase {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cases[caseID]
	if !ok {
		return nil
	}
	return cloneCase(c)
}

// CasesForCustomer lists a customer's cases, most recently updated first.
func (m *Memory) CasesForCustomer(customerID string) []*domain.AgentCase {
	m.mu.RLock()
	var out []*domain.AgentCase
	for _, c := range m.cases {
		if c.CustomerID == customerID {
			out = append(out, cloneCase(c))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// AllCases lists every case, most recently updated first.
func (m *Memory) AllCases() []*domain.AgentCase {
	m.mu.RLock()
	out := make([]*domain.AgentCase, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, cloneCase(c))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// UpdateCase merges a partial update into a case, bumping UpdatedAt.
func (m *Memory) UpdateCase(caseID string, update domain.CaseUpdate) *domain.AgentCase {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[caseID]
	if !ok {
		return nil
	}

	if update.Status != nil {
		c.Status = *update.Status
		if *update.Status == domain.CaseEscalated {
			c.IsEscalated = true
		}
	}
	if update.Resolution != nil {
		c.Resolution = *update.Resolution
	}
	if update.AssignedAgent != nil {
		c.AssignedAgent = *update.AssignedAgent
	}
	if update.Transcript != nil {
		snapshot := make([]domain.Message, len(update.Transcript))
		copy(snapshot, update.Transcript)
		c.Transcript = snapshot
	}
	c.UpdatedAt = m.now()

	return cloneCase(c)
}

// CardForCustomer returns the customer's card, lazily creating it BLOCKED.
func (m *Memory) CardForCustomer(customerID string) *domain.SimulatedCard {
	m.mu.Lock()
	defer m.mu.Unlock()

	card, ok := m.cards[customerID]
	if !ok {
		card = &domain.SimulatedCard{
			CardID:       "CARD-" + customerID,
			CustomerID:   customerID,
			MaskedNumber: "**** **** **** " + randDigits(4),
			Type:         domain.CardDebit,
			// Default blocked so the ATM-unlock demo has work to do.
			Status:     domain.CardBlocked,
			ExpiryDate: "12/27",
		}
		m.cards[customerID] = card
	}

	out := *card
	return &out
}

// UpdateCardStatus sets the card status, creating the card if needed.
func (m *Memory) UpdateCardStatus(customerID string, status domain.CardStatus) *domain.SimulatedCard {
	card := m.CardForCustomer(customerID)

	m.mu.Lock()
	m.cards[customerID].Status = status
	card.Status = status
	m.mu.Unlock()

	return card
}

// GenerateOTP mints a fresh 6-digit code, overwriting any prior record.
func (m *Memory) GenerateOTP(customerID, purpose string) *domain.OTPRecord {
	record := &domain.OTPRecord{
		OTP:        randDigits(6),
		CustomerID: customerID,
		Purpose:    purpose,
		ExpiresAt:  m.now().Add(m.otpTTL),
	}

	m.mu.Lock()
	m.otps[customerID] = record
	m.mu.Unlock()

	out := *record
	return &out
}

// VerifyOTP checks and consumes the customer's active OTP record.
func (m *Memory) VerifyOTP(customerID, submitted string) OTPResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.otps[customerID]
	if !ok {
		return OTPResult{Reason: "No OTP found. Please request a new one."}
	}
	if record.Used {
		return OTPResult{Reason: "OTP already used."}
	}
	if record.Expired(m.now()) {
		return OTPResult{Reason: "OTP has expired."}
	}
	if record.OTP != strings.TrimSpace(submitted) {
		return OTPResult{Reason: "Incorrect OTP."}
	}

	record.Used = true
	return OTPResult{Valid: true}
}

// CleanupExpiredOTPs drops records past expiry.
func (m *Memory) CleanupExpiredOTPs(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for customerID, record := range m.otps {
		if record.Expired(now) {
			delete(m.otps, customerID)
			removed++
		}
	}
	return removed
}

func cloneConversation(conv *domain.Conversation) *domain.Conversation {
	out := *conv
	out.Messages = make([]domain.Message, len(conv.Messages))
	copy(out.Messages, conv.Messages)
	if conv.Identity != nil {
		identity := *conv.Identity
		out.Identity = &identity
	}
	if conv.EscalatedAt != nil {
		at := *conv.EscalatedAt
		out.EscalatedAt = &at
	}
	return &out
}

func cloneCase(c *domain.AgentCase) *domain.AgentCase {
	out := *c
	out.Transcript = make([]domain.Message, len(c.Transcript))
	copy(out.Transcript, c.Transcript)
	return &out
}
