// Package intent classifies free-text chat messages into symbolic intents
// using ordered keyword patterns. No model calls; classification is pure and
// deterministic.
package intent

import (
	"regexp"
	"sort"
)

// Intent is a symbolic label for what the customer is asking.
type Intent string

const (
	GetBalance          Intent = "GET_BALANCE"
	GetTransactions     Intent = "GET_TRANSACTIONS"
	GetAccount          Intent = "GET_ACCOUNT"
	GetChequeStatus     Intent = "GET_CHEQUE_STATUS"
	UnlockCard          Intent = "UNLOCK_CARD"
	BlockCard           Intent = "BLOCK_CARD"
	FileComplaint       Intent = "FILE_COMPLAINT"
	CheckCaseStatus     Intent = "CHECK_CASE_STATUS"
	CloseCase           Intent = "CLOSE_CASE"
	Escalate            Intent = "ESCALATE"
	ProvideOTP          Intent = "PROVIDE_OTP"
	ProvideChequeNumber Intent = "PROVIDE_CHEQUE_NUMBER"
	Greeting            Intent = "GREETING"
	Help                Intent = "HELP"
	Affirm              Intent = "AFFIRM"
	Deny                Intent = "DENY"
	Unknown             Intent = "UNKNOWN"
)

type rule struct {
	intent   Intent
	priority int // higher = checked first
	patterns []*regexp.Regexp
}

// Rules are evaluated in descending priority; the first match wins. The
// high-priority extraction intents (OTP, cheque number) must pre-empt the
// keyword intents so a bare 6-digit number is never read as a balance query.
var rules = []rule{
	{
		intent:   Escalate,
		priority: 100,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(escalat|speak.*human|talk.*agent|human agent|not satisfied|not happy|real person)\b`),
		},
	},
	{
		intent:   ProvideOTP,
		priority: 90,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*\d{6}\s*$`),
			regexp.MustCompile(`(?i)\b(otp|one.?time.?password)\b.*\d{4,8}`),
			regexp.MustCompile(`(?i)\b\d{4,8}\b.*\b(otp|code|pin)\b`),
		},
	},
	{
		intent:   ProvideChequeNumber,
		priority: 85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcheque\s*(no\.?|number|#)?\s*[:\-]?\s*\d{6,}\b`),
			regexp.MustCompile(`(?i)\b(it is|its|number is|no is)\s*\d{6,}\b`),
		},
	},
	{
		intent:   CloseCase,
		priority: 80,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(close|resolve|resolved|satisfied|that.?s fine|all good|done|close.*case|case.*close)\b`),
		},
	},
	{
		intent:   CheckCaseStatus,
		priority: 75,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(case.*status|status.*case|case.*id|check.*complaint|complaint.*status|case\s+CASE-\d+)\b`),
			regexp.MustCompile(`\bCASE-\d{13}-[A-Z0-9]{5}\b`),
		},
	},
	{
		intent:   FileComplaint,
		priority: 70,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(complaint|complain|grievance|dispute|problem|issue|not.?reflected|not.?credited|cheque.*not|not.*cheque|missing.*deposit|deposit.*missing|amount.*not|not.*amount)\b`),
		},
	},
	{
		intent:   UnlockCard,
		priority: 65,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(unlock|unblock|enable|activate|re-?enable)\b.*\b(card|atm|debit|credit)\b`),
			regexp.MustCompile(`(?i)\b(card|atm|debit|credit)\b.*\b(unlock|unblock|enable|activate)\b`),
			regexp.MustCompile(`(?i)\batm.*unlock\b|\bunlock.*atm\b`),
		},
	},
	{
		intent:   BlockCard,
		priority: 64,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(block|freeze|suspend|lock|disable|lost|stolen)\b.*\b(card|atm|debit|credit)\b`),
			regexp.MustCompile(`(?i)\b(card|atm).*\b(block|freeze|suspend|lost|stolen)\b`),
		},
	},
	{
		intent:   GetChequeStatus,
		priority: 60,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(cheque.*status|status.*cheque|cheque.*clear|cheque.*credit|cheque.*reflect|check.*cheque)\b`),
		},
	},
	{
		intent:   GetTransactions,
		priority: 55,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(transaction|transactions|history|recent.*payment|payment.*history|statement|mini.*statement)\b`),
		},
	},
	{
		intent:   GetAccount,
		priority: 50,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(account.*detail|account.*info|account.*number|ifsc|branch|account.*type)\b`),
		},
	},
	{
		intent:   GetBalance,
		priority: 45,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(balance|how much|available.*amount|current.*balance|check.*balance|balance.*check|funds|money)\b`),
		},
	},
	{
		intent:   Affirm,
		priority: 30,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|yup|sure|ok|okay|correct|right|confirmed|go ahead|proceed|please|fine)\s*\.?\s*$`),
		},
	},
	{
		intent:   Deny,
		priority: 29,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(no|nope|nah|not really|don'?t|cancel|stop|skip)\s*\.?\s*$`),
		},
	},
	{
		intent:   Help,
		priority: 20,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(help|what can you|what do you|options|capabilities|assist|support)\b`),
		},
	},
	{
		intent:   Greeting,
		priority: 10,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good\s+(morning|afternoon|evening)|howdy|greetings)\b`),
		},
	},
}

var (
	otpPattern    = regexp.MustCompile(`\b(\d{6})\b`)
	chequePattern = regexp.MustCompile(`\b(\d{6,})\b`)
	caseIDPattern = regexp.MustCompile(`CASE-\d{13}-[A-Z0-9]{5}`)
)

func init() {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority > rules[j].priority
	})
}

// Classify maps a message to an Intent. Same input always yields the same
// intent.
func Classify(message string) Intent {
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(message) {
				return r.intent
			}
		}
	}
	return Unknown
}

// ExtractOTP pulls a 6-digit code out of a message, or returns "".
func ExtractOTP(message string) string {
	m := otpPattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractChequeNumber pulls the first run of 6+ digits out of a message, or
// returns "".
func ExtractChequeNumber(message string) string {
	m := chequePattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractCaseID pulls a case identifier out of a message, or returns "".
func ExtractCaseID(message string) string {
	return caseIDPattern.FindString(message)
}
