// Package models provides the data structures shared by the ingestion
// pipeline: statements, transactions, classification rules and company
// match results.
package models

// Format identifies the layout of an uploaded bank statement file.
type Format string

const (
	FormatUnknown Format = ""
	FormatNorma43 Format = "norma43"
	FormatCAMT053 Format = "camt053"
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatNorma43:
		return "Norma 43"
	case FormatCAMT053:
		return "CAMT.053"
	default:
		return "unknown"
	}
}

// Sign tells whether a transaction debits or credits the account.
type Sign string

const (
	SignDebit  Sign = "debit"
	SignCredit Sign = "credit"
)

// Valid reports whether s is one of the defined signs.
func (s Sign) Valid() bool {
	return s == SignDebit || s == SignCredit
}

// ISO 20022 credit/debit indicators.
const (
	IndicatorDebit  = "DBIT"
	IndicatorCredit = "CRDT"
)

// SignFromIndicator maps a CAMT CdtDbtInd value to a Sign.
func SignFromIndicator(indicator string) (Sign, bool) {
	switch indicator {
	case IndicatorDebit:
		return SignDebit, true
	case IndicatorCredit:
		return SignCredit, true
	default:
		return "", false
	}
}
