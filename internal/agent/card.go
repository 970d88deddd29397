package agent

import (
	"fmt"
	"strings"

	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/intent"
	"github.com/swiftbank/assist/internal/metrics"
	"github.com/swiftbank/assist/internal/store"
)

// cardAgent drives the OTP-gated card workflow:
// VERIFY_CARD -> AWAIT_OTP -> EXECUTE_ACTION -> DONE, with FAILED reachable
// from OTP verification.
type cardAgent struct {
	store store.Store
}

// initiate starts an unlock or block workflow. If the card is already in the
// requested state the flow short-circuits to DONE without generating an OTP.
func (a *cardAgent) initiate(in Input, action domain.CardAction) Output {
	card := a.store.CardForCustomer(in.Identity.CustomerID)

	wf := in.Conversation.WorkflowState
	wf.Type = domain.WorkflowCardAction
	wf.CurrentStep = domain.StepVerifyCard
	wf.PendingOTPAction = action
	wf.CardID = card.CardID

	if action == domain.CardActionUnlock && card.Status == domain.CardActive {
		return a.noOp(card, "active", "Block my card")
	}
	if action == domain.CardActionBlock && card.Status == domain.CardBlocked {
		return a.noOp(card, "blocked", "Unlock my card")
	}

	record := a.store.GenerateOTP(in.Identity.CustomerID, string(action))

	wf.CurrentStep = domain.StepAwaitOTP
	wf.TransactionState = domain.TxnOTPSent

	actionLabel := "unlock"
	if action == domain.CardActionBlock {
		actionLabel = "block"
	}

	reply := fmt.Sprintf("I found your %s card ending **%s** (current status: **%s**).\n\n", card.Type, card.LastFour(), card.Status) +
		fmt.Sprintf("To **%s** this card, I need to verify your identity.\n\n", actionLabel) +
		fmt.Sprintf("📱 An OTP has been sent to your registered mobile **%s**.\n\n", in.Identity.MaskedMobile()) +
		fmt.Sprintf("**Simulated OTP for demo: `%s`**\n\n", record.OTP) +
		"Please enter the 6-digit OTP to continue."

	return Output{
		Reply:       reply,
		Workflow:    wf,
		AgentName:   nameOTP,
		Step:        domain.StepAwaitOTP,
		RequiresOTP: true,
		Metadata:    map[string]any{"simulatedOtp": record.OTP},
	}
}

// submitOTP verifies a submitted code and, on success, executes the pending
// card action. Failures keep the workflow at AWAIT_OTP so the customer can
// retry, resend, or cancel.
func (a *cardAgent) submitOTP(in Input) Output {
	wf := in.Conversation.WorkflowState

	submitted := intent.ExtractOTP(in.Message)
	if submitted == "" {
		submitted = strings.TrimSpace(in.Message)
	}

	result := a.store.VerifyOTP(in.Identity.CustomerID, submitted)
	if !result.Valid {
		metrics.OTPVerifications.WithLabelValues("invalid").Inc()
		wf.TransactionState = domain.TxnFailed
		return Output{
			Reply:            fmt.Sprintf("❌ OTP verification failed: **%s**\n\nPlease enter the correct 6-digit OTP or type \"cancel\" to abort.", result.Reason),
			Workflow:         wf,
			AgentName:        nameOTP,
			Step:             domain.StepAwaitOTP,
			RequiresOTP:      true,
			SuggestedReplies: []string{"Resend OTP", "Cancel"},
		}
	}
	metrics.OTPVerifications.WithLabelValues("valid").Inc()

	wf.CurrentStep = domain.StepExecuteAction
	wf.TransactionState = domain.TxnVerified

	action := wf.PendingOTPAction
	newStatus := domain.CardActive
	actionLabel := "unlocked"
	emoji := "✅"
	if action == domain.CardActionBlock {
		newStatus = domain.CardBlocked
		actionLabel = "blocked"
		emoji = "🔒"
	}
	card := a.store.UpdateCardStatus(in.Identity.CustomerID, newStatus)

	reply := fmt.Sprintf("%s OTP verified successfully!\n\n", emoji) +
		fmt.Sprintf("Your %s card ending **%s** has been **%s**.\n\n", card.Type, card.LastFour(), actionLabel) +
		fmt.Sprintf("New card status: **%s**\n\n", card.Status) +
		"Is there anything else I can help you with?"

	return Output{
		Reply:            reply,
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameCardAction,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Check balance", "File a complaint", "No, thanks"},
	}
}

// resendOTP regenerates the code for the pending action without moving the
// workflow.
func (a *cardAgent) resendOTP(in Input) Output {
	wf := in.Conversation.WorkflowState

	purpose := string(wf.PendingOTPAction)
	if purpose == "" {
		purpose = "CARD_ACTION"
	}
	record := a.store.GenerateOTP(in.Identity.CustomerID, purpose)

	wf.TransactionState = domain.TxnOTPSent

	reply := fmt.Sprintf("📱 A new OTP has been sent to **%s**.\n\n", in.Identity.MaskedMobile()) +
		fmt.Sprintf("**Simulated OTP for demo: `%s`**\n\n", record.OTP) +
		"Please enter the 6-digit OTP to continue."

	return Output{
		Reply:       reply,
		Workflow:    wf,
		AgentName:   nameOTP,
		Step:        domain.StepAwaitOTP,
		RequiresOTP: true,
		Metadata:    map[string]any{"simulatedOtp": record.OTP},
	}
}

// cancel aborts an awaiting-OTP workflow with no card mutation.
func (a *cardAgent) cancel() Output {
	return Output{
		Reply:            "Card action cancelled. Is there anything else I can help you with?",
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameOrchestrator,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Check balance", "Help"},
	}
}

func (a *cardAgent) noOp(card *domain.SimulatedCard, state, suggestion string) Output {
	return Output{
		Reply: fmt.Sprintf("Your %s card ending **%s** is already **%s**. No action needed.\n\nIs there anything else I can help you with?",
			card.Type, card.LastFour(), state),
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameCardVerification,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Check balance", suggestion, "No, thanks"},
	}
}
