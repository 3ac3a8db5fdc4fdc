package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single movement of a bank statement, in file order.
type Transaction struct {
	Date           time.Time       `json:"date"`                   // Value date
	BookingDate    time.Time       `json:"bookingDate,omitempty"`  // Booking (operation) date
	Amount         decimal.Decimal `json:"amount"`                 // Unsigned magnitude
	Sign           Sign            `json:"sign"`                   // Debit or credit
	Currency       string          `json:"currency"`               // ISO 4217 alpha code
	Description    string          `json:"description"`            // Free text, may be empty
	Reference      string          `json:"reference,omitempty"`    // Optional structured reference
	BankCode       string          `json:"bankCode,omitempty"`     // Norma 43 concepto común or CAMT BkTxCd
	Counterparty   string          `json:"counterparty,omitempty"` // CAMT related party name
	DocumentNumber string          `json:"documentNumber,omitempty"`
	OriginalAmount *Money          `json:"originalAmount,omitempty"` // Norma 43 record 24
	Category       Category        `json:"category,omitempty"`       // Empty until classified

	// Source position: Norma 43 line number or CAMT element path.
	Line int    `json:"line,omitempty"`
	Path string `json:"path,omitempty"`
}

// SignedAmount returns the amount negated for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Sign == SignDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsDebit reports whether the transaction debits the account.
func (t Transaction) IsDebit() bool {
	return t.Sign == SignDebit
}
