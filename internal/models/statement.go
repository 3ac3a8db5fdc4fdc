package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the date range covered by a statement.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether neither bound is set.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// BankStatement is the normalized result of parsing one account section of an
// uploaded file. ClosingBalance is nil when the source carries none.
type BankStatement struct {
	Format            Format                  `json:"format"`
	AccountIdentifier string                  `json:"accountIdentifier"`
	IBAN              string                  `json:"iban,omitempty"`
	BankName          string                  `json:"bankName,omitempty"`
	AccountHolder     string                  `json:"accountHolder,omitempty"`
	StatementID       string                  `json:"statementId,omitempty"`
	MessageID         string                  `json:"messageId,omitempty"`
	Currency          string                  `json:"currency"`
	OpeningBalance    Money                   `json:"openingBalance"`
	ClosingBalance    *Money                  `json:"closingBalance,omitempty"`
	Period            Period                  `json:"period"`
	Transactions      []Transaction           `json:"transactions"`
	Warnings          []ReconciliationWarning `json:"warnings,omitempty"`
}

// TransactionsTotal returns the sum of signed transaction amounts.
func (s *BankStatement) TransactionsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range s.Transactions {
		total = total.Add(tx.SignedAmount())
	}
	return total
}

// ComputedClosingBalance returns opening balance plus all signed amounts.
func (s *BankStatement) ComputedClosingBalance() Money {
	return Money{
		Amount:   s.OpeningBalance.Amount.Add(s.TransactionsTotal()),
		Currency: s.OpeningBalance.Currency,
	}
}

// Identifiers returns the account identifiers usable for company resolution,
// IBAN first.
func (s *BankStatement) Identifiers() []string {
	var ids []string
	if s.IBAN != "" {
		ids = append(ids, s.IBAN)
	}
	if s.AccountIdentifier != "" && s.AccountIdentifier != s.IBAN {
		ids = append(ids, s.AccountIdentifier)
	}
	return ids
}

// AddWarning appends a reconciliation warning.
func (s *BankStatement) AddWarning(w ReconciliationWarning) {
	s.Warnings = append(s.Warnings, w)
}

// UncategorizedCount returns how many transactions still need a category.
func (s *BankStatement) UncategorizedCount() int {
	n := 0
	for _, tx := range s.Transactions {
		if tx.Category.IsUncategorized() {
			n++
		}
	}
	return n
}
