package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/swiftbank/assist/internal/bank"
	"github.com/swiftbank/assist/internal/domain"
	"github.com/swiftbank/assist/internal/store"
)

// fakeGateway is an in-memory bank.Gateway for orchestrator tests.
type fakeGateway struct {
	balance     float64
	txns        []bank.Transaction
	account     *bank.Account
	cheque      *bank.Cheque
	failCheques bool
	failAll     bool
}

var errGatewayDown = errors.New("gateway unavailable")

func (f *fakeGateway) GetBalance(_ context.Context, _ string) (*bank.Balance, error) {
	if f.failAll {
		return nil, errGatewayDown
	}
	return &bank.Balance{Balance: f.balance, AccountType: "SAVINGS"}, nil
}

func (f *fakeGateway) GetTransactions(_ context.Context, _ string, limit int) ([]bank.Transaction, error) {
	if f.failAll {
		return nil, errGatewayDown
	}
	if len(f.txns) > limit {
		return f.txns[:limit], nil
	}
	return f.txns, nil
}

func (f *fakeGateway) GetAccount(_ context.Context, _ string) (*bank.Account, error) {
	if f.failAll {
		return nil, errGatewayDown
	}
	if f.account == nil {
		return nil, errGatewayDown
	}
	return f.account, nil
}

func (f *fakeGateway) GetChequeStatus(_ context.Context, _, chequeNumber string) (*bank.Cheque, error) {
	if f.failAll || f.failCheques || f.cheque == nil {
		return nil, errGatewayDown
	}
	c := *f.cheque
	c.ChequeNumber = chequeNumber
	return &c, nil
}

func (f *fakeGateway) GetCustomerProfile(_ context.Context, customerID string) (*bank.Customer, error) {
	if f.failAll {
		return nil, errGatewayDown
	}
	return &bank.Customer{CustomerID: customerID, Name: "Ravi Kumar"}, nil
}

func testIdentity() domain.CustomerIdentity {
	return domain.CustomerIdentity{
		CustomerID:    "CUST001",
		AccountNumber: "ACC001",
		Mobile:        "9876543210",
		Name:          "Ravi Kumar",
	}
}

func newTestOrchestrator(gw bank.Gateway) (*Orchestrator, store.Store) {
	st := store.NewMemory(0)
	return New(st, gw), st
}

func TestBalanceEnquiry(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{balance: 45230})
	resp := orch.HandleMessage(context.Background(), "What is my account balance?", "", testIdentity())

	if !strings.Contains(resp.Reply, "45,230") {
		t.Fatalf("expected formatted balance in reply, got %q", resp.Reply)
	}
	if resp.WorkflowType != "" {
		t.Fatalf("expected workflow reset after single-turn enquiry, got %s", resp.WorkflowType)
	}
	if len(resp.SuggestedReplies) == 0 {
		t.Fatal("expected suggested replies")
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session ID")
	}
}

func TestSessionIDStableAcrossTurns(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{balance: 100})
	first := orch.HandleMessage(context.Background(), "hello", "", testIdentity())
	second := orch.HandleMessage(context.Background(), "what is my balance", first.SessionID, testIdentity())

	if second.SessionID != first.SessionID {
		t.Fatalf("session changed: %q then %q", first.SessionID, second.SessionID)
	}
	// Each turn appends exactly a user and an assistant message.
	if len(second.Messages) != 4 {
		t.Fatalf("expected 4 transcript messages after 2 turns, got %d", len(second.Messages))
	}
	if second.Messages[0].Role != domain.RoleUser || second.Messages[1].Role != domain.RoleAssistant {
		t.Fatal("transcript order broken")
	}
}

func TestGatewayFailureIsGraceful(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{failAll: true})
	resp := orch.HandleMessage(context.Background(), "check my balance", "", testIdentity())

	if resp.WorkflowStep != domain.StepFailed {
		t.Fatalf("expected FAILED step, got %s", resp.WorkflowStep)
	}
	if !strings.Contains(resp.Reply, "try again") && !strings.Contains(resp.Reply, "Try again") {
		t.Fatalf("expected apologetic retry reply, got %q", resp.Reply)
	}
}

func TestCardUnlockFullOTPFlow(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "unlock my ATM card", "", id)
	if !resp.RequiresOTP {
		t.Fatal("expected requiresOtp")
	}
	if resp.WorkflowStep != domain.StepAwaitOTP {
		t.Fatalf("expected AWAIT_OTP, got %s", resp.WorkflowStep)
	}
	if !strings.Contains(resp.Reply, "****"+id.Mobile[len(id.Mobile)-4:]) {
		t.Fatalf("expected masked mobile in reply, got %q", resp.Reply)
	}

	// The simulated OTP is echoed in the assistant message metadata.
	otp := simulatedOTPFromTranscript(t, resp.Messages)

	done := orch.HandleMessage(context.Background(), otp, resp.SessionID, id)
	if done.WorkflowStep != domain.StepDone {
		t.Fatalf("expected DONE after valid OTP, got %s", done.WorkflowStep)
	}
	if done.WorkflowType != "" {
		t.Fatalf("expected workflow reset, got %s", done.WorkflowType)
	}
	if card := st.CardForCustomer(id.CustomerID); card.Status != domain.CardActive {
		t.Fatalf("expected ACTIVE card, got %s", card.Status)
	}
}

func TestCardUnlockWrongOTPStaysInFlow(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "unlock my card", "", id)
	otp := simulatedOTPFromTranscript(t, resp.Messages)

	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}
	failed := orch.HandleMessage(context.Background(), wrong, resp.SessionID, id)
	if failed.WorkflowStep != domain.StepAwaitOTP {
		t.Fatalf("expected to stay at AWAIT_OTP, got %s", failed.WorkflowStep)
	}
	if failed.TransactionState != domain.TxnFailed {
		t.Fatalf("expected FAILED transaction state, got %s", failed.TransactionState)
	}
	if !strings.Contains(failed.Reply, "Incorrect OTP.") {
		t.Fatalf("expected incorrect-OTP reason, got %q", failed.Reply)
	}
	if card := st.CardForCustomer(id.CustomerID); card.Status != domain.CardBlocked {
		t.Fatal("card must not change on failed verification")
	}

	// The original code still works after a failed attempt.
	ok := orch.HandleMessage(context.Background(), otp, resp.SessionID, id)
	if ok.WorkflowStep != domain.StepDone {
		t.Fatalf("expected DONE after retry with correct OTP, got %s", ok.WorkflowStep)
	}
}

func TestCardUnlockNoOpWhenAlreadyActive(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()
	st.UpdateCardStatus(id.CustomerID, domain.CardActive)

	resp := orch.HandleMessage(context.Background(), "unlock my card", "", id)
	if resp.RequiresOTP {
		t.Fatal("no OTP should be needed for a no-op")
	}
	if resp.WorkflowStep != domain.StepDone {
		t.Fatalf("expected DONE, got %s", resp.WorkflowStep)
	}
	if !strings.Contains(resp.Reply, "already") {
		t.Fatalf("expected no-op reply, got %q", resp.Reply)
	}
}

func TestCardActionCancelAndResend(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "block my card", "", id)
	if resp.WorkflowStep != domain.StepAwaitOTP {
		t.Fatalf("expected AWAIT_OTP, got %s", resp.WorkflowStep)
	}
	st.UpdateCardStatus(id.CustomerID, domain.CardActive)

	resent := orch.HandleMessage(context.Background(), "resend OTP please", resp.SessionID, id)
	if resent.WorkflowStep != domain.StepAwaitOTP || !resent.RequiresOTP {
		t.Fatalf("expected resend to stay at AWAIT_OTP, got %s", resent.WorkflowStep)
	}

	cancelled := orch.HandleMessage(context.Background(), "cancel", resp.SessionID, id)
	if cancelled.WorkflowType != "" {
		t.Fatalf("expected workflow reset on cancel, got %s", cancelled.WorkflowType)
	}
	if !strings.Contains(cancelled.Reply, "cancelled") {
		t.Fatalf("expected cancellation reply, got %q", cancelled.Reply)
	}
	if card := st.CardForCustomer(id.CustomerID); card.Status != domain.CardActive {
		t.Fatal("cancel must not mutate the card")
	}
}

// Mid-OTP digits must route to OTP submission, never be reclassified as a
// fresh intent.
func TestMidOTPDigitsNotReclassified(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "unlock my card", "", id)
	// "1234" alone would classify as UNKNOWN; in flight it is an OTP attempt.
	failed := orch.HandleMessage(context.Background(), "1234", resp.SessionID, id)
	if failed.WorkflowStep != domain.StepAwaitOTP {
		t.Fatalf("digits mid-flight must stay in the OTP flow, got %s", failed.WorkflowStep)
	}
	if !strings.Contains(failed.Reply, "Incorrect OTP.") {
		t.Fatalf("expected incorrect-OTP reply, got %q", failed.Reply)
	}
}

func TestChequeComplaintPausesForNumber(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{
		cheque: &bank.Cheque{Amount: 15000, Status: "PENDING", ExpectedClearanceDate: "2026-03-05"},
	})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "my cheque is not reflected", "", id)
	if resp.WorkflowStep != domain.StepGatherDetails {
		t.Fatalf("expected GATHER_DETAILS, got %s", resp.WorkflowStep)
	}
	if !strings.Contains(resp.Reply, "cheque number") {
		t.Fatalf("expected prompt for cheque number, got %q", resp.Reply)
	}

	created := orch.HandleMessage(context.Background(), "123456", resp.SessionID, id)
	if created.CaseID == "" {
		t.Fatal("expected a case ID")
	}
	if created.WorkflowStep != domain.StepCreateCase {
		t.Fatalf("expected CREATE_CASE, got %s", created.WorkflowStep)
	}
	if !strings.Contains(created.Reply, "Cheque Verification Result") {
		t.Fatalf("expected verification note, got %q", created.Reply)
	}

	c := st.GetCase(created.CaseID)
	if c == nil {
		t.Fatal("case not persisted")
	}
	if c.Type != domain.ComplaintChequeNotCredited {
		t.Fatalf("expected CHEQUE_NOT_CREDITED, got %s", c.Type)
	}
	if c.Entities.ChequeNumber != "123456" {
		t.Fatalf("expected cheque number slot, got %q", c.Entities.ChequeNumber)
	}
	if c.Status != domain.CaseOpen {
		t.Fatalf("expected OPEN, got %s", c.Status)
	}
}

func TestChequeComplaintGatewayFailureStillCreatesCase(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{failCheques: true})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "9876543 deposited but not credited", "", id)
	if resp.CaseID == "" {
		t.Fatal("expected case despite gateway failure")
	}
	if !strings.Contains(resp.Reply, "Could not verify cheque") {
		t.Fatalf("expected fallback verification note, got %q", resp.Reply)
	}
	if c := st.GetCase(resp.CaseID); c == nil || c.Status != domain.CaseOpen {
		t.Fatal("case not persisted OPEN")
	}
}

func TestSatisfactionCloseCase(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{failCheques: true})
	id := testIdentity()

	created := orch.HandleMessage(context.Background(), "123456 deposited but not credited", "", id)
	closed := orch.HandleMessage(context.Background(), "yes, close the case", created.SessionID, id)

	if closed.WorkflowStep != domain.StepCloseCase {
		t.Fatalf("expected CLOSE_CASE, got %s", closed.WorkflowStep)
	}
	c := st.GetCase(created.CaseID)
	if c.Status != domain.CaseClosed {
		t.Fatalf("expected CLOSED, got %s", c.Status)
	}
	if c.Resolution != "Resolved – customer satisfied" {
		t.Fatalf("unexpected resolution: %q", c.Resolution)
	}
}

func TestSatisfactionEscalation(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{failCheques: true})
	id := testIdentity()

	created := orch.HandleMessage(context.Background(), "123456 deposited but not credited", "", id)
	escalated := orch.HandleMessage(context.Background(), "no, escalate to an agent", created.SessionID, id)

	if !escalated.IsEscalated {
		t.Fatal("expected isEscalated on response")
	}
	if escalated.WorkflowStep != domain.StepEscalate {
		t.Fatalf("expected ESCALATE, got %s", escalated.WorkflowStep)
	}
	if escalated.AgentName != "Escalation Agent" {
		t.Fatalf("expected Escalation Agent, got %q", escalated.AgentName)
	}

	c := st.GetCase(created.CaseID)
	if c.Status != domain.CaseEscalated || !c.IsEscalated {
		t.Fatalf("expected ESCALATED case, got %s", c.Status)
	}
	if c.AssignedAgent == "" {
		t.Fatal("expected an assigned agent")
	}
	if len(c.Transcript) == 0 {
		t.Fatal("expected transcript attached on escalation")
	}
	conv := st.GetConversation(created.SessionID)
	if !conv.IsEscalated {
		t.Fatal("expected conversation marked escalated")
	}
}

// Once escalated, the flag stays set for the rest of the session.
func TestEscalationIsSticky(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{balance: 100, failCheques: true})
	id := testIdentity()

	created := orch.HandleMessage(context.Background(), "123456 deposited but not credited", "", id)
	orch.HandleMessage(context.Background(), "no, escalate to an agent", created.SessionID, id)

	later := orch.HandleMessage(context.Background(), "check my balance", created.SessionID, id)
	if !later.IsEscalated {
		t.Fatal("escalation flag must be sticky")
	}
}

func TestEscalateWithoutPendingCase(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "I am not satisfied, I want a real person", "", id)
	if !resp.IsEscalated {
		t.Fatal("expected escalation without a pending case")
	}
	if resp.CaseID != "" {
		t.Fatalf("expected no case ID, got %q", resp.CaseID)
	}
	conv := st.GetConversation(resp.SessionID)
	if !conv.IsEscalated {
		t.Fatal("expected conversation marked escalated")
	}
}

func TestCaseStatusOwnershipFailsClosed(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	other := st.CreateCase("CUST999", "Someone Else", domain.ComplaintGeneral, "their issue", domain.Entities{}, nil)

	resp := orch.HandleMessage(context.Background(), "status of case "+other.CaseID, "", testIdentity())
	if !strings.Contains(resp.Reply, "was not found or does not belong to your account.") {
		t.Fatalf("expected fail-closed lookup, got %q", resp.Reply)
	}
}

func TestCaseStatusListsOwnCases(t *testing.T) {
	t.Parallel()

	orch, st := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	empty := orch.HandleMessage(context.Background(), "what is my case status", "", id)
	if !strings.Contains(empty.Reply, "no open cases") {
		t.Fatalf("expected empty-list reply, got %q", empty.Reply)
	}

	c := st.CreateCase(id.CustomerID, id.Name, domain.ComplaintGeneral, "my issue", domain.Entities{}, nil)
	listed := orch.HandleMessage(context.Background(), "what is my case status", empty.SessionID, id)
	if !strings.Contains(listed.Reply, c.CaseID) {
		t.Fatalf("expected case listed, got %q", listed.Reply)
	}
}

func TestGreetingAndHelp(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{})
	id := testIdentity()

	greeted := orch.HandleMessage(context.Background(), "hello", "", id)
	if !strings.Contains(greeted.Reply, id.Name) {
		t.Fatalf("expected name in greeting, got %q", greeted.Reply)
	}
	if !strings.Contains(greeted.Reply, "SwiftBank AI assistant") {
		t.Fatalf("expected assistant introduction, got %q", greeted.Reply)
	}

	helped := orch.HandleMessage(context.Background(), "help", greeted.SessionID, id)
	if !strings.Contains(helped.Reply, "Account Information") {
		t.Fatalf("expected help menu, got %q", helped.Reply)
	}
	if len(helped.SuggestedReplies) != 4 {
		t.Fatalf("expected 4 canned suggestions, got %d", len(helped.SuggestedReplies))
	}
}

func TestUnknownFallsBackToMenu(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{})
	resp := orch.HandleMessage(context.Background(), "qwerty asdf", "", testIdentity())
	if !strings.Contains(resp.Reply, "didn't quite understand") {
		t.Fatalf("expected fallback reply, got %q", resp.Reply)
	}
	if len(resp.SuggestedReplies) == 0 {
		t.Fatal("expected suggestions on fallback")
	}
}

func TestChequeStatusEnquiryPausesAndResumes(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(&fakeGateway{
		cheque: &bank.Cheque{Amount: 5000, Status: "CLEARED"},
	})
	id := testIdentity()

	resp := orch.HandleMessage(context.Background(), "what is my cheque status", "", id)
	if resp.WorkflowStep != domain.StepFetchInfo {
		t.Fatalf("expected pause at FETCH_INFO, got %s", resp.WorkflowStep)
	}

	resumed := orch.HandleMessage(context.Background(), "654321", resp.SessionID, id)
	if !strings.Contains(resumed.Reply, "CLEARED") {
		t.Fatalf("expected cheque status reply, got %q", resumed.Reply)
	}
	if resumed.WorkflowType != "" {
		t.Fatalf("expected workflow reset after enquiry, got %s", resumed.WorkflowType)
	}
}

func simulatedOTPFromTranscript(t *testing.T, messages []domain.Message) string {
	t.Helper()
	for i := len(messages) - 1; i >= 0; i-- {
		if otp, ok := messages[i].Metadata["simulatedOtp"].(string); ok {
			return otp
		}
	}
	t.Fatal("no simulated OTP found in transcript metadata")
	return ""
}
