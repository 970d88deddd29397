package domain

// CardStatus is the state of a simulated card.
type CardStatus string

const (
	CardActive    CardStatus = "ACTIVE"
	CardBlocked   CardStatus = "BLOCKED"
	CardSuspended CardStatus = "SUSPENDED"
)

// CardType distinguishes debit from credit cards.
type CardType string

const (
	CardDebit  CardType = "DEBIT"
	CardCredit CardType = "CREDIT"
)

// SimulatedCard is the demo card record kept per customer. Cards are lazily
// created, default BLOCKED so the unlock flow has something to do.
type SimulatedCard struct {
	CardID       string     `json:"cardId"`
	CustomerID   string     `json:"customerId"`
	MaskedNumber string     `json:"maskedNumber"`
	Type         CardType   `json:"type"`
	Status       CardStatus `json:"status"`
	ExpiryDate   string     `json:"expiryDate"`
}

// LastFour returns the visible tail of the masked card number.
func (c SimulatedCard) LastFour() string {
	if len(c.MaskedNumber) < 4 {
		return c.MaskedNumber
	}
	return c.MaskedNumber[len(c.MaskedNumber)-4:]
}
