package domain

import "time"

// MessageRole identifies the author of a transcript message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one entry in a conversation transcript. Messages are
// append-only; insertion order is the transcript of record.
type Message struct {
	ID           string         `json:"id"`
	Role         MessageRole    `json:"role"`
	Content      string         `json:"content"`
	Timestamp    time.Time      `json:"timestamp"`
	AgentName    string         `json:"agentName,omitempty"`
	WorkflowStep WorkflowStep   `json:"workflowStep,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Conversation is one chat session with a customer. Created on the first
// message of a session and retained for the process lifetime.
type Conversation struct {
	SessionID     string            `json:"sessionId"`
	CustomerID    string            `json:"customerId"`
	Identity      *CustomerIdentity `json:"identity,omitempty"`
	Messages      []Message         `json:"messages"`
	WorkflowState WorkflowState     `json:"workflowState"`
	IsEscalated   bool              `json:"isEscalated"`
	EscalatedAt   *time.Time        `json:"escalatedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Append adds a message to the transcript.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// Transcript returns a copy of the message list, safe to snapshot onto a
// case record.
func (c *Conversation) Transcript() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// MarkEscalated sets the sticky escalation flag. Normal flows never clear it.
func (c *Conversation) MarkEscalated(at time.Time) {
	if c.IsEscalated {
		return
	}
	c.IsEscalated = true
	c.EscalatedAt = &at
}
