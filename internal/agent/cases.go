package agent

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/swiftbank/assist/internal/bank"
	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/intent"
	"github.com/swiftbank/assist/internal/metrics"
	"github.com/swiftbank/assist/internal/store"
)

// caseAgent drives the complaint lifecycle:
// GATHER_DETAILS -> VERIFY_COMPLAINT -> CREATE_CASE -> AWAIT_SATISFACTION ->
// CLOSE_CASE | ESCALATE.
type caseAgent struct {
	store store.Store
	gw    bank.Gateway
}

var chequeIssueRe = regexp.MustCompile(`(?i)chequ[e]?|not.?reflect|not.?credit|not.?clear`)

// humanAgents is the roster complaints are escalated to.
var humanAgents = []string{"Priya Verma", "Rohit Sharma", "Anita Desai", "Karan Mehta"}

func assignHumanAgent() string {
	return humanAgents[rand.Intn(len(humanAgents))]
}

// initiate starts a complaint. Cheque-related complaints without a cheque
// number pause at GATHER_DETAILS to collect it; everything else goes
// straight to case creation.
func (a *caseAgent) initiate(ctx context.Context, in Input) Output {
	chequeNumber := intent.ExtractChequeNumber(in.Message)
	isChequeIssue := chequeIssueRe.MatchString(in.Message)

	wf := in.Conversation.WorkflowState
	wf.Type = domain.WorkflowComplaintLifecycle
	wf.CurrentStep = domain.StepGatherDetails
	wf.Entities.OriginalMessage = in.Message
	wf.Entities.ChequeNumber = chequeNumber
	if isChequeIssue {
		wf.Entities.ComplaintType = domain.ComplaintChequeNotCredited
	} else {
		wf.Entities.ComplaintType = domain.ComplaintGeneral
	}

	if isChequeIssue && chequeNumber == "" {
		wf.Entities.AwaitingChequeNumber = true
		return Output{
			Reply: "I'm sorry to hear your cheque hasn't been reflected. I'll help you raise a complaint.\n\n" +
				"Could you please provide the **cheque number** so I can verify the status?",
			Workflow:  wf,
			AgentName: nameCaseManagement,
			Step:      domain.StepGatherDetails,
		}
	}

	if isChequeIssue {
		return a.verifyChequeAndCreateCase(ctx, in, wf, chequeNumber)
	}

	return a.createComplaintCase(in, wf, domain.ComplaintGeneral, in.Message, "")
}

// chequeNumberProvided resumes a paused cheque complaint once the customer
// supplies the number.
func (a *caseAgent) chequeNumberProvided(ctx context.Context, in Input) Output {
	wf := in.Conversation.WorkflowState
	chequeNumber := intent.ExtractChequeNumber(in.Message)

	if chequeNumber == "" {
		return Output{
			Reply:     "I could not extract a valid cheque number from your message. Please enter just the **cheque number** (e.g., `123456`).",
			Workflow:  wf,
			AgentName: nameCaseManagement,
			Step:      domain.StepGatherDetails,
		}
	}

	wf.Entities.ChequeNumber = chequeNumber
	wf.Entities.AwaitingChequeNumber = false
	return a.verifyChequeAndCreateCase(ctx, in, wf, chequeNumber)
}

// verifyChequeAndCreateCase checks the cheque with the banking backend
// best-effort, then registers the case either way.
func (a *caseAgent) verifyChequeAndCreateCase(ctx context.Context, in Input, wf domain.WorkflowState, chequeNumber string) Output {
	wf.CurrentStep = domain.StepVerifyComplaint
	wf.ChequeNumber = chequeNumber

	var note string
	cheque, err := a.gw.GetChequeStatus(ctx, in.Identity.CustomerID, chequeNumber)
	if err == nil {
		note = "\n\n📋 **Cheque Verification Result:**\n" +
			fmt.Sprintf("• Number: %s\n", chequeNumber) +
			fmt.Sprintf("• Amount: ₹%s\n", formatINR(cheque.Amount)) +
			fmt.Sprintf("• Current Status: %s\n", cheque.Status) +
			fmt.Sprintf("• Expected Clearance: %s", orNA(cheque.ExpectedClearanceDate))
		wf.Entities.ChequeVerification = &domain.ChequeVerification{
			ChequeNumber:      cheque.ChequeNumber,
			Amount:            cheque.Amount,
			Status:            cheque.Status,
			ExpectedClearance: cheque.ExpectedClearanceDate,
		}
	} else {
		note = fmt.Sprintf("\n\n⚠️ Could not verify cheque #%s in the system. Will raise complaint with available information.", chequeNumber)
	}

	description := fmt.Sprintf("Cheque #%s deposited but not reflected in account.", chequeNumber)
	return a.createComplaintCase(in, wf, domain.ComplaintChequeNotCredited, description, note)
}

func (a *caseAgent) createComplaintCase(in Input, wf domain.WorkflowState, caseType, description, extraNote string) Output {
	wf.CurrentStep = domain.StepCreateCase

	newCase := a.store.CreateCase(
		in.Identity.CustomerID,
		in.Identity.Name,
		caseType,
		description,
		wf.Entities,
		in.Conversation.Transcript(),
	)

	wf.PendingCaseID = newCase.CaseID
	wf.CurrentStep = domain.StepAwaitSatisfaction

	reply := fmt.Sprintf("✅ Your complaint has been registered successfully!%s\n\n", extraNote) +
		"📁 **Case Details:**\n" +
		fmt.Sprintf("• **Case ID:** `%s`\n", newCase.CaseID) +
		fmt.Sprintf("• **Type:** %s\n", formatCaseType(caseType)) +
		fmt.Sprintf("• **Status:** %s\n", newCase.Status) +
		fmt.Sprintf("• **Created:** %s\n\n", formatTimestamp(newCase.CreatedAt)) +
		"You will receive updates at your registered mobile/email.\n\n" +
		"Is your issue resolved to your satisfaction, or would you like me to escalate this to a senior agent?"

	return Output{
		Reply:            reply,
		Workflow:         wf,
		AgentName:        nameCaseManagement,
		Step:             domain.StepCreateCase,
		CaseID:           newCase.CaseID,
		SuggestedReplies: []string{"Yes, close the case", "No, escalate to an agent"},
	}
}

// resolveSatisfaction closes or escalates the pending case. Escalation with
// no pending case still marks the conversation escalated so a human sees it.
func (a *caseAgent) resolveSatisfaction(in Input, satisfied bool) Output {
	wf := in.Conversation.WorkflowState
	caseID := wf.PendingCaseID

	if satisfied {
		if caseID != "" {
			status := domain.CaseClosed
			resolution := "Resolved – customer satisfied"
			a.store.UpdateCase(caseID, domain.CaseUpdate{Status: &status, Resolution: &resolution})
		}
		return Output{
			Reply: fmt.Sprintf("✅ Case **%s** has been **closed**. We're glad your issue is resolved!\n\n", caseID) +
				"Thank you for banking with us. Is there anything else I can help you with?",
			Workflow:         domain.IdleWorkflow(),
			AgentName:        nameCaseManagement,
			Step:             domain.StepCloseCase,
			CaseID:           caseID,
			SuggestedReplies: []string{"Check balance", "No, thanks"},
		}
	}

	metrics.EscalationsTotal.Inc()
	assigned := assignHumanAgent()
	if caseID != "" {
		status := domain.CaseEscalated
		a.store.UpdateCase(caseID, domain.CaseUpdate{
			Status:        &status,
			AssignedAgent: &assigned,
			Transcript:    in.Conversation.Transcript(),
		})
	}

	var reply strings.Builder
	if caseID != "" {
		fmt.Fprintf(&reply, "🔴 Case **%s** has been **escalated** to a senior agent.\n\n", caseID)
	} else {
		reply.WriteString("🔴 Your conversation has been **escalated** to a senior agent.\n\n")
	}
	fmt.Fprintf(&reply, "**Assigned Agent:** %s\n", assigned)
	reply.WriteString("**Full conversation transcript** has been transferred.\n\n")
	fmt.Fprintf(&reply, "Our agent will contact you on **%s** within 30 minutes.\n\n", in.Identity.MaskedMobile())
	reply.WriteString("Is there anything else I can note for the agent?")

	return Output{
		Reply:            reply.String(),
		Workflow:         domain.IdleWorkflow(),
		AgentName:        nameEscalation,
		Step:             domain.StepEscalate,
		CaseID:           caseID,
		Escalated:        true,
		SuggestedReplies: []string{"No, that is all", "Add more details"},
	}
}

// status reports one case by ID, or lists the customer's cases when no ID is
// given. Lookups are owner-scoped; a case belonging to someone else reads as
// not found.
func (a *caseAgent) status(in Input) Output {
	wf := in.Conversation.WorkflowState

	if caseID := intent.ExtractCaseID(in.Message); caseID != "" {
		c := a.store.GetCase(caseID)
		if c == nil || c.CustomerID != in.Identity.CustomerID {
			return Output{
				Reply:            fmt.Sprintf("Case **%s** was not found or does not belong to your account.", caseID),
				Workflow:         wf,
				AgentName:        nameCaseManagement,
				Step:             domain.StepDone,
				SuggestedReplies: []string{"File a new complaint", "Check balance"},
			}
		}
		return Output{
			Reply:            formatCaseStatus(c),
			Workflow:         wf,
			AgentName:        nameCaseManagement,
			Step:             domain.StepDone,
			CaseID:           c.CaseID,
			SuggestedReplies: []string{"Close case", "Escalate to agent", "Check balance"},
		}
	}

	cases := a.store.CasesForCustomer(in.Identity.CustomerID)
	if len(cases) == 0 {
		return Output{
			Reply:            "You have no open cases or complaints on file.",
			Workflow:         wf,
			AgentName:        nameCaseManagement,
			Step:             domain.StepDone,
			SuggestedReplies: []string{"File a complaint", "Check balance"},
		}
	}

	var list strings.Builder
	for i, c := range cases {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "• **%s** | %s | **%s** | %s", c.CaseID, formatCaseType(c.Type), c.Status, formatDate(c.CreatedAt))
	}

	suggestions := make([]string, 0, 2)
	for _, c := range cases[:min(2, len(cases))] {
		suggestions = append(suggestions, "Status of "+c.CaseID)
	}

	return Output{
		Reply:            fmt.Sprintf("Here are your complaint cases:\n\n%s\n\nWould you like details on a specific case?", list.String()),
		Workflow:         wf,
		AgentName:        nameCaseManagement,
		Step:             domain.StepDone,
		SuggestedReplies: suggestions,
	}
}

func formatCaseStatus(c *domain.AgentCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📁 **Case %s**\n\n", c.CaseID)
	fmt.Fprintf(&b, "• **Type:** %s\n", formatCaseType(c.Type))
	fmt.Fprintf(&b, "• **Status:** %s\n", c.Status)
	fmt.Fprintf(&b, "• **Description:** %s\n", c.Description)
	fmt.Fprintf(&b, "• **Created:** %s\n", formatTimestamp(c.CreatedAt))
	fmt.Fprintf(&b, "• **Last Updated:** %s\n", formatTimestamp(c.UpdatedAt))
	if c.AssignedAgent != "" {
		fmt.Fprintf(&b, "• **Assigned Agent:** %s\n", c.AssignedAgent)
	}
	if c.Resolution != "" {
		fmt.Fprintf(&b, "• **Resolution:** %s\n", c.Resolution)
	}
	b.WriteString("\nIs there anything else I can help you with?")
	return b.String()
}

func formatCaseType(caseType string) string {
	switch caseType {
	case domain.ComplaintChequeNotCredited:
		return "Cheque Not Credited"
	case domain.ComplaintGeneral:
		return "General Complaint"
	default:
		return caseType
	}
}
