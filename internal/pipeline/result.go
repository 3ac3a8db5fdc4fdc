package pipeline

import (
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/textdecode"
)

// ReviewReason explains why a statement needs a human look before booking.
type ReviewReason string

const (
	ReviewUnmatchedCompany ReviewReason = "unmatched_company"
	ReviewAmbiguousCompany ReviewReason = "ambiguous_company"
	ReviewCompanyMismatch  ReviewReason = "company_mismatch"
	ReviewUncategorized    ReviewReason = "uncategorized_transactions"
	ReviewReconciliation   ReviewReason = "reconciliation_warnings"
)

// Result is the outcome of one upload.
type Result struct {
	Format     models.Format       `json:"format"`
	Encoding   textdecode.Encoding `json:"encoding"`
	Statements []StatementResult   `json:"statements"`
}

// NeedsReview reports whether any statement needs review.
func (r *Result) NeedsReview() bool {
	for i := range r.Statements {
		if r.Statements[i].NeedsReview() {
			return true
		}
	}
	return false
}

// TransactionCount is the number of transactions across all statements.
func (r *Result) TransactionCount() int {
	n := 0
	for i := range r.Statements {
		n += len(r.Statements[i].Statement.Transactions)
	}
	return n
}

// StatementResult pairs a classified statement with its company resolution.
type StatementResult struct {
	Statement  models.BankStatement `json:"statement"`
	Resolution models.Resolution    `json:"resolution"`
	// CompanyID is the company the uploader targeted, empty when none.
	CompanyID string `json:"requestedCompanyId,omitempty"`
}

// ReviewReasons lists every reason the statement needs review, in a fixed
// order. It is empty for a clean statement.
func (s StatementResult) ReviewReasons() []ReviewReason {
	var reasons []ReviewReason
	switch s.Resolution.Status {
	case models.ResolutionUnmatched:
		reasons = append(reasons, ReviewUnmatchedCompany)
	case models.ResolutionAmbiguous:
		reasons = append(reasons, ReviewAmbiguousCompany)
	case models.ResolutionMatched:
		if c, ok := s.Resolution.Company(); ok && s.CompanyID != "" && c.CompanyID != s.CompanyID {
			reasons = append(reasons, ReviewCompanyMismatch)
		}
	}
	if s.Statement.UncategorizedCount() > 0 {
		reasons = append(reasons, ReviewUncategorized)
	}
	if len(s.Statement.Warnings) > 0 {
		reasons = append(reasons, ReviewReconciliation)
	}
	return reasons
}

// NeedsReview reports whether ReviewReasons is non-empty.
func (s StatementResult) NeedsReview() bool {
	return len(s.ReviewReasons()) > 0
}
