package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/swiftbank/assist/internal/bank"
	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/intent"
	"github.com/swiftbank/assist/internal/metrics"
	"github.com/swiftbank/assist/internal/store"
)

// Orchestrator receives every user message and routes it through the right
// workflow agent: restore state, continue any mid-flight workflow, otherwise
// classify intent and dispatch, then persist and answer.
type Orchestrator struct {
	store store.Store
	info  *infoAgent
	card  *cardAgent
	cases *caseAgent

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds an orchestrator over the given store and banking gateway.
func New(st store.Store, gw bank.Gateway) *Orchestrator {
	return &Orchestrator{
		store: st,
		info:  &infoAgent{gw: gw},
		card:  &cardAgent{store: st},
		cases: &caseAgent{store: st, gw: gw},
		locks: map[string]*sync.Mutex{},
	}
}

var (
	resendRe    = regexp.MustCompile(`(?i)resend|new otp|send again`)
	cancelRe    = regexp.MustCompile(`(?i)cancel|stop|abort`)
	digitRe     = regexp.MustCompile(`\d`)
	escalatePhr = regexp.MustCompile(`(?i)escalat|agent|not satisfied`)
)

// HandleMessage processes one chat turn for a session. Turns on the same
// session are serialized; different sessions proceed concurrently.
func (o *Orchestrator) HandleMessage(ctx context.Context, message, sessionID string, identity domain.CustomerIdentity) *ChatResponse {
	start := time.Now()

	var conv *domain.Conversation
	if sessionID != "" {
		conv = o.store.GetConversation(sessionID)
	}
	if conv == nil {
		conv = o.store.CreateConversation(identity.CustomerID, &identity)
	}

	lock := o.sessionLock(conv.SessionID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock so concurrent turns on the same session see
	// each other's writes.
	if fresh := o.store.GetConversation(conv.SessionID); fresh != nil {
		conv = fresh
	}
	conv.Identity = &identity
	conv.Append(makeMessage(domain.RoleUser, message, "", "", nil))

	in := Input{
		Message:      message,
		SessionID:    conv.SessionID,
		Identity:     identity,
		Conversation: conv,
	}
	detected := intent.Classify(message)
	out := o.route(ctx, in, detected)

	conv.WorkflowState = out.Workflow
	if out.Escalated {
		conv.MarkEscalated(time.Now())
	}
	conv.Append(makeMessage(domain.RoleAssistant, out.Reply, out.AgentName, out.Step, out.Metadata))
	o.store.SaveConversation(conv)

	metrics.TurnsTotal.WithLabelValues(string(detected), out.AgentName).Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	if out.Workflow.Type != "" || out.Step == domain.StepDone || out.Step == domain.StepFailed {
		wfLabel := string(out.Workflow.Type)
		if wfLabel == "" {
			wfLabel = "none"
		}
		metrics.WorkflowOutcomes.WithLabelValues(wfLabel, string(out.Step)).Inc()
	}

	slog.Debug("turn handled",
		"session", conv.SessionID,
		"customer", identity.CustomerID,
		"intent", detected,
		"agent", out.AgentName,
		"step", out.Step,
		"duration", time.Since(start),
	)

	suggestions := out.SuggestedReplies
	if suggestions == nil {
		suggestions = []string{}
	}
	return &ChatResponse{
		SessionID:        conv.SessionID,
		Reply:            out.Reply,
		AgentName:        out.AgentName,
		WorkflowType:     out.Workflow.Type,
		WorkflowStep:     out.Step,
		TransactionState: out.Workflow.TransactionState,
		RequiresOTP:      out.RequiresOTP,
		CaseID:           out.CaseID,
		IsEscalated:      conv.IsEscalated,
		SuggestedReplies: suggestions,
		Messages:         conv.Transcript(),
	}
}

// route picks the agent for this turn. Mid-flight workflow continuations win
// over fresh intent dispatch, except for ESCALATE which always fires.
func (o *Orchestrator) route(ctx context.Context, in Input, detected intent.Intent) Output {
	wf := in.Conversation.WorkflowState

	if detected == intent.Escalate {
		return o.cases.resolveSatisfaction(in, false)
	}

	// Card action awaiting OTP.
	if wf.Type == domain.WorkflowCardAction && wf.CurrentStep == domain.StepAwaitOTP {
		switch {
		case resendRe.MatchString(in.Message):
			return o.card.resendOTP(in)
		case cancelRe.MatchString(in.Message):
			return o.card.cancel()
		case digitRe.MatchString(in.Message):
			return o.card.submitOTP(in)
		}
	}

	// Complaint awaiting a cheque number.
	if wf.Type == domain.WorkflowComplaintLifecycle &&
		wf.CurrentStep == domain.StepGatherDetails &&
		wf.Entities.AwaitingChequeNumber {
		return o.cases.chequeNumberProvided(ctx, in)
	}

	// Cheque status enquiry awaiting a cheque number.
	if wf.Type == domain.WorkflowInformationRetrieval &&
		wf.CurrentStep == domain.StepFetchInfo &&
		wf.Entities.AwaitingChequeNumber {
		return o.info.chequeFollowUp(ctx, in)
	}

	// Complaint awaiting the satisfaction answer.
	if wf.Type == domain.WorkflowComplaintLifecycle && wf.CurrentStep == domain.StepAwaitSatisfaction {
		if detected == intent.CloseCase || detected == intent.Affirm {
			return o.cases.resolveSatisfaction(in, true)
		}
		if detected == intent.Deny || escalatePhr.MatchString(in.Message) {
			return o.cases.resolveSatisfaction(in, false)
		}
	}

	switch detected {
	case intent.Greeting:
		return greet(in)
	case intent.Help:
		return helpMenu(in)
	case intent.GetBalance, intent.GetTransactions, intent.GetAccount, intent.GetChequeStatus:
		return o.info.handle(ctx, in, detected)
	case intent.UnlockCard:
		return o.card.initiate(in, domain.CardActionUnlock)
	case intent.BlockCard:
		return o.card.initiate(in, domain.CardActionBlock)
	case intent.FileComplaint:
		return o.cases.initiate(ctx, in)
	case intent.CheckCaseStatus:
		return o.cases.status(in)
	case intent.CloseCase:
		if wf.PendingCaseID != "" {
			return o.cases.resolveSatisfaction(in, true)
		}
		return o.cases.status(in)
	case intent.Affirm:
		return Output{
			Reply:            "Is there something specific I can help you with? You can ask about your balance, transactions, card actions, or raise a complaint.",
			Workflow:         wf,
			AgentName:        nameOrchestrator,
			Step:             domain.StepDone,
			SuggestedReplies: helpSuggestions(),
		}
	case intent.Deny:
		return Output{
			Reply:     "No problem! Feel free to reach out if you need anything. Have a great day! 👋",
			Workflow:  domain.IdleWorkflow(),
			AgentName: nameOrchestrator,
			Step:      domain.StepDone,
		}
	default:
		return Output{
			Reply: "I'm sorry, I didn't quite understand that. Here's what I can help you with:\n\n" +
				helpText + "\nPlease try rephrasing your request.",
			Workflow:         wf,
			AgentName:        nameOrchestrator,
			Step:             domain.StepDone,
			SuggestedReplies: helpSuggestions(),
		}
	}
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[sessionID] = lock
	}
	return lock
}

func greet(in Input) Output {
	hour := time.Now().Hour()
	greeting := "Good evening"
	switch {
	case hour < 12:
		greeting = "Good morning"
	case hour < 17:
		greeting = "Good afternoon"
	}

	return Output{
		Reply: fmt.Sprintf("%s, **%s**! 👋\n\n", greeting, in.Identity.Name) +
			"I'm your SwiftBank AI assistant. How can I help you today?\n\n" +
			helpText,
		Workflow:         in.Conversation.WorkflowState,
		AgentName:        nameOrchestrator,
		Step:             domain.StepDone,
		SuggestedReplies: helpSuggestions(),
	}
}

func helpMenu(in Input) Output {
	return Output{
		Reply:            "Here's everything I can help you with:\n\n" + helpText,
		Workflow:         in.Conversation.WorkflowState,
		AgentName:        nameOrchestrator,
		Step:             domain.StepDone,
		SuggestedReplies: helpSuggestions(),
	}
}

const helpText = "🏦 **Account Information**\n" +
	"• Check balance\n" +
	"• View recent transactions\n" +
	"• Account details\n" +
	"• Cheque status\n\n" +
	"💳 **Card Actions** *(requires OTP)*\n" +
	"• Unlock / Unblock ATM card\n" +
	"• Block / Freeze card\n\n" +
	"📁 **Complaints & Cases**\n" +
	"• Report cheque not credited\n" +
	"• File a complaint\n" +
	"• Check case status\n" +
	"• Escalate to human agent\n"

func helpSuggestions() []string {
	return []string{"Check my balance", "Unlock my ATM card", "Cheque not reflected", "View transactions"}
}

const msgIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func msgIDSuffix() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = msgIDAlphabet[rand.Intn(len(msgIDAlphabet))]
	}
	return string(b)
}

func makeMessage(role domain.MessageRole, content, agentName string, step domain.WorkflowStep, metadata map[string]any) domain.Message {
	return domain.Message{
		ID:           fmt.Sprintf("MSG-%d-%s", time.Now().UnixMilli(), msgIDSuffix()),
		Role:         role,
		Content:      content,
		Timestamp:    time.Now(),
		AgentName:    agentName,
		WorkflowStep: step,
		Metadata:     metadata,
	}
}
