package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/swiftbank/assist/internal/bank"
	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/intent"
)

const transactionListLimit = 5

// infoAgent handles the information-retrieval workflow: balance,
// transactions, account details, and cheque status. Every branch is
// single-turn except cheque status, which may pause to collect a cheque
// number.
type infoAgent struct {
	gw bank.Gateway
}

func (a *infoAgent) handle(ctx context.Context, in Input, action intent.Intent) Output {
	wf := in.Conversation.WorkflowState
	wf.Type = domain.WorkflowInformationRetrieval
	wf.CurrentStep = domain.StepFetchInfo

	switch action {
	case intent.GetBalance:
		return a.balance(ctx, in)
	case intent.GetTransactions:
		return a.transactions(ctx, in)
	case intent.GetAccount:
		return a.account(ctx, in)
	case intent.GetChequeStatus:
		return a.chequeStatus(ctx, in, wf)
	default:
		return a.failure("Unknown information request.")
	}
}

func (a *infoAgent) balance(ctx context.Context, in Input) Output {
	res, err := a.gw.GetBalance(ctx, in.Identity.CustomerID)
	if err != nil {
		return a.failure("Could not retrieve your balance right now. Please try again.")
	}

	return Output{
		Reply: fmt.Sprintf("Your current account balance is **₹%s**.\n\nIs there anything else I can help you with?",
			formatINR(res.Balance)),
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameBankingInfo,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Show my transactions", "Account details", "No, thanks"},
	}
}

func (a *infoAgent) transactions(ctx context.Context, in Input) Output {
	txns, err := a.gw.GetTransactions(ctx, in.Identity.CustomerID, transactionListLimit)
	if err != nil {
		return a.failure("Could not retrieve your transactions right now.")
	}
	if len(txns) > transactionListLimit {
		txns = txns[:transactionListLimit]
	}

	var b strings.Builder
	for i, t := range txns {
		sign := "-"
		if t.Type == "CREDIT" {
			sign = "+"
		}
		desc := t.Description
		if desc == "" {
			desc = t.TransactionID
		}
		date := t.Timestamp
		if ts, parseErr := time.Parse(time.RFC3339, t.Timestamp); parseErr == nil {
			date = formatDate(ts)
		}
		fmt.Fprintf(&b, "%d. %s | **%s₹%s** | %s | %s\n", i+1, t.Type, sign, formatINR(t.Amount), desc, date)
	}

	return Output{
		Reply: fmt.Sprintf("Here are your last %d transactions:\n\n%s\nNeed a full statement or anything else?",
			len(txns), b.String()),
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameBankingInfo,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Check balance", "Account details", "File a complaint"},
	}
}

func (a *infoAgent) account(ctx context.Context, in Input) Output {
	acc, err := a.gw.GetAccount(ctx, in.Identity.CustomerID)
	if err != nil {
		return a.failure("Could not retrieve your account details right now.")
	}

	branch := orNA(acc.Branch)
	ifsc := orNA(acc.IFSC)
	status := acc.Status
	if status == "" {
		status = "Active"
	}

	reply := "Here are your account details:\n\n" +
		fmt.Sprintf("• **Account Number:** %s\n", acc.AccountNumber) +
		fmt.Sprintf("• **Account Type:** %s\n", acc.AccountType) +
		fmt.Sprintf("• **Branch:** %s\n", branch) +
		fmt.Sprintf("• **IFSC:** %s\n", ifsc) +
		fmt.Sprintf("• **Status:** %s\n\n", status) +
		"Is there anything else I can help you with?"

	return Output{
		Reply:            reply,
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameBankingInfo,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Check balance", "Show transactions", "No, thanks"},
	}
}

// chequeStatus answers a cheque-status query. Without a cheque number in the
// workflow slots or the message itself it pauses the workflow and asks for
// one; the orchestrator routes the next turn straight back here.
func (a *infoAgent) chequeStatus(ctx context.Context, in Input, wf domain.WorkflowState) Output {
	chequeNumber := wf.Entities.ChequeNumber
	if chequeNumber == "" {
		chequeNumber = intent.ExtractChequeNumber(in.Message)
	}

	if chequeNumber == "" {
		wf.Entities.AwaitingChequeNumber = true
		return Output{
			Reply:     "Please provide the **cheque number** you want to check.",
			Workflow:  wf,
			AgentName: nameBankingInfo,
			Step:      domain.StepFetchInfo,
		}
	}

	cheque, err := a.gw.GetChequeStatus(ctx, in.Identity.CustomerID, chequeNumber)
	if err != nil {
		return a.failure(fmt.Sprintf("Could not find status for cheque #%s. Please verify the number.", chequeNumber))
	}

	reply := fmt.Sprintf("Status for cheque **#%s**:\n\n", chequeNumber) +
		fmt.Sprintf("• **Amount:** ₹%s\n", formatINR(cheque.Amount)) +
		fmt.Sprintf("• **Status:** %s\n", cheque.Status) +
		fmt.Sprintf("• **Expected Clearance:** %s\n\n", orNA(cheque.ExpectedClearanceDate)) +
		"Is there anything else I can help you with?"

	return Output{
		Reply:            reply,
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameBankingInfo,
		Step:             domain.StepDone,
		SuggestedReplies: []string{"Check balance", "File a complaint", "No, thanks"},
	}
}

// chequeFollowUp resumes a paused cheque-status query once the customer
// replies with a number.
func (a *infoAgent) chequeFollowUp(ctx context.Context, in Input) Output {
	wf := in.Conversation.WorkflowState
	number := intent.ExtractChequeNumber(in.Message)
	if number == "" {
		return Output{
			Reply:     "I could not read a cheque number in that. Please enter just the **cheque number** (e.g., `123456`).",
			Workflow:  wf,
			AgentName: nameBankingInfo,
			Step:      domain.StepFetchInfo,
		}
	}

	wf.Entities.ChequeNumber = number
	wf.Entities.AwaitingChequeNumber = false
	return a.chequeStatus(ctx, in, wf)
}

// failure is the terminal path for gateway errors: apology, FAILED step,
// workflow reset so the next message starts fresh.
func (a *infoAgent) failure(message string) Output {
	return Output{
		Reply:            message,
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameBankingInfo,
		Step:             domain.StepFailed,
		SuggestedReplies: []string{"Try again", "Go back to menu"},
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
