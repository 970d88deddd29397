package domain

// WorkflowType identifies one of the three multi-turn workflow families.
type WorkflowType string

const (
	WorkflowInformationRetrieval WorkflowType = "INFORMATION_RETRIEVAL"
	WorkflowCardAction           WorkflowType = "CARD_ACTION"
	WorkflowComplaintLifecycle   WorkflowType = "COMPLAINT_LIFECYCLE"
)

// WorkflowStep is the current position inside a workflow's state machine.
type WorkflowStep string

const (
	// Information retrieval.
	StepFetchInfo WorkflowStep = "FETCH_INFO"

	// Card action.
	StepVerifyCard    WorkflowStep = "VERIFY_CARD"
	StepAwaitOTP      WorkflowStep = "AWAIT_OTP"
	StepExecuteAction WorkflowStep = "EXECUTE_ACTION"

	// Complaint lifecycle.
	StepGatherDetails     WorkflowStep = "GATHER_DETAILS"
	StepVerifyComplaint   WorkflowStep = "VERIFY_COMPLAINT"
	StepCreateCase        WorkflowStep = "CREATE_CASE"
	StepAwaitSatisfaction WorkflowStep = "AWAIT_SATISFACTION"
	StepCloseCase         WorkflowStep = "CLOSE_CASE"
	StepEscalate          WorkflowStep = "ESCALATE"

	// Shared terminal steps.
	StepDone   WorkflowStep = "DONE"
	StepFailed WorkflowStep = "FAILED"
)

// TransactionState tracks OTP-gated transaction progress within a workflow.
type TransactionState string

const (
	TxnInitiated TransactionState = "INITIATED"
	TxnOTPSent   TransactionState = "OTP_SENT"
	TxnVerified  TransactionState = "VERIFIED"
	TxnFailed    TransactionState = "FAILED"
)

// CardAction is a pending OTP-gated card mutation.
type CardAction string

const (
	CardActionUnlock CardAction = "UNLOCK"
	CardActionBlock  CardAction = "BLOCK"
)

// Complaint classification carried in Entities.
const (
	ComplaintChequeNotCredited = "CHEQUE_NOT_CREDITED"
	ComplaintGeneral           = "GENERAL_COMPLAINT"
)

// ChequeVerification is a snapshot of a gateway cheque-status result attached
// to a complaint at verification time.
type ChequeVerification struct {
	ChequeNumber      string  `json:"chequeNumber"`
	Amount            float64 `json:"amount"`
	Status            string  `json:"status"`
	ExpectedClearance string  `json:"expectedClearanceDate,omitempty"`
}

// Entities holds the slot values extracted during a workflow. Typed fields
// replace the original free-form bag so each workflow's slots are explicit.
type Entities struct {
	ComplaintType        string              `json:"complaintType,omitempty"`
	ChequeNumber         string              `json:"chequeNumber,omitempty"`
	AwaitingChequeNumber bool                `json:"awaitingChequeNumber,omitempty"`
	OriginalMessage      string              `json:"originalMessage,omitempty"`
	ChequeVerification   *ChequeVerification `json:"chequeVerification,omitempty"`
}

// WorkflowState is the per-conversation workflow position. Type and
// CurrentStep are empty together (idle) or set together (active); at most one
// workflow is active per conversation.
type WorkflowState struct {
	Type             WorkflowType     `json:"type,omitempty"`
	CurrentStep      WorkflowStep     `json:"currentStep,omitempty"`
	TransactionState TransactionState `json:"transactionState,omitempty"`
	PendingOTPAction CardAction       `json:"pendingOtpAction,omitempty"`
	PendingCaseID    string           `json:"pendingCaseId,omitempty"`
	ChequeNumber     string           `json:"chequeNumber,omitempty"`
	CardID           string           `json:"cardId,omitempty"`
	Entities         Entities         `json:"entities"`
}

// IdleWorkflow returns a fresh idle workflow state.
func IdleWorkflow() WorkflowState {
	return WorkflowState{}
}

// IsIdle reports whether no workflow is in flight.
func (w WorkflowState) IsIdle() bool {
	return w.Type == "" && w.CurrentStep == ""
}
