package models

// WarningKind classifies a non-fatal anomaly found while parsing.
type WarningKind string

const (
	WarningBalanceMismatch          WarningKind = "balance_mismatch"
	WarningTransactionCountMismatch WarningKind = "transaction_count_mismatch"
	WarningDebitTotalMismatch       WarningKind = "debit_total_mismatch"
	WarningCreditTotalMismatch      WarningKind = "credit_total_mismatch"
	WarningMissingTrailer           WarningKind = "missing_trailer"
	WarningRecordCountMismatch      WarningKind = "record_count_mismatch"
	WarningDescriptionTruncated     WarningKind = "description_truncated"
	WarningCurrencyMismatch         WarningKind = "currency_mismatch"
	WarningOpeningBalanceDerived    WarningKind = "opening_balance_derived"
)

// ReconciliationWarning is returned alongside a statement when its data is
// usable but internally inconsistent. It never aborts parsing.
type ReconciliationWarning struct {
	Kind     WarningKind `json:"kind"`
	Message  string      `json:"message"`
	Expected string      `json:"expected,omitempty"`
	Actual   string      `json:"actual,omitempty"`
	Line     int         `json:"line,omitempty"`
}

// HasWarning reports whether warnings contains one of the given kind.
func HasWarning(warnings []ReconciliationWarning, kind WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
