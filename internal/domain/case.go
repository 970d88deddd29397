package domain

import "time"

// CaseStatus is the lifecycle state of a complaint case.
type CaseStatus string

const (
	CaseOpen      CaseStatus = "OPEN"
	CaseVerified  CaseStatus = "VERIFIED"
	CaseClosed    CaseStatus = "CLOSED"
	CaseEscalated CaseStatus = "ESCALATED"
)

// AgentCase is a complaint case raised through the assistant. The transcript
// is a snapshot of the conversation at creation time, replaced with the full
// transcript on escalation.
type AgentCase struct {
	CaseID        string     `json:"caseId"`
	CustomerID    string     `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	Status        CaseStatus `json:"status"`
	Entities      Entities   `json:"entities"`
	Transcript    []Message  `json:"transcript"`
	Resolution    string     `json:"resolution,omitempty"`
	AssignedAgent string     `json:"assignedAgent,omitempty"`
	IsEscalated   bool       `json:"isEscalated"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CaseUpdate is a partial update applied to a case. Nil fields are left
// unchanged.
type CaseUpdate struct {
	Status        *CaseStatus `json:"status,omitempty"`
	Resolution    *string     `json:"resolution,omitempty"`
	AssignedAgent *string     `json:"assignedAgent,omitempty"`
	Transcript    []Message   `json:"transcript,omitempty"`
}
