// Package agent implements the conversational workflow orchestrator: intent
// routing, the three workflow agents, and per-session state handling.
package agent

import (
	"github.com/swiftbank/assist/internal/domain"
)

// Agent display names carried on assistant messages and responses.
const (
	nameOrchestrator     = "Orchestrator"
	nameBankingInfo      = "Banking Information Agent"
	nameCardVerification = "Card Verification Agent"
	nameCardAction       = "Card Action Agent"
	nameOTP              = "OTP Agent"
	nameCaseManagement   = "Case Management Agent"
	nameEscalation       = "Escalation Agent"
)

// Input is one user turn handed to a workflow agent. Conversation is the
// loaded session including the just-appended user message; agents read it
// but only the orchestrator writes it back.
type Input struct {
	Message      string
	SessionID    string
	Identity     domain.CustomerIdentity
	Conversation *domain.Conversation
}

// Output is a workflow agent's structured result for one turn. Agents are
// total: every turn produces a well-formed Output, never an error.
type Output struct {
	Reply            string
	Workflow         domain.WorkflowState
	AgentName        string
	Step             domain.WorkflowStep
	RequiresOTP      bool
	CaseID           string
	Escalated        bool
	SuggestedReplies []string
	Metadata         map[string]any
}

// ChatResponse is the orchestrator's outward contract for one turn,
// consumed by the HTTP and WebSocket chat front ends.
type ChatResponse struct {
	SessionID        string                  `json:"sessionId"`
	Reply            string                  `json:"reply"`
	AgentName        string                  `json:"agentName"`
	WorkflowType     domain.WorkflowType     `json:"workflowType,omitempty"`
	WorkflowStep     domain.WorkflowStep     `json:"workflowStep,omitempty"`
	TransactionState domain.TransactionState `json:"transactionState,omitempty"`
	RequiresOTP      bool                    `json:"requiresOtp"`
	CaseID           string                  `json:"caseId,omitempty"`
	IsEscalated      bool                    `json:"isEscalated"`
	SuggestedReplies []string                `json:"suggestedReplies"`
	Messages         []domain.Message        `json:"messages"`
}
