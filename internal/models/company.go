package models

// CompanyRecord is a tenant company known to the platform together with the
// IBAN of its bank account.
type CompanyRecord struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	IBAN string `yaml:"iban" json:"iban"`
}

// CompaniesConfig represents the structure of the companies YAML file.
type CompaniesConfig struct {
	Companies []CompanyRecord `yaml:"companies"`
}

// MatchConfidence states how a candidate was matched.
type MatchConfidence string

const (
	ConfidenceExact         MatchConfidence = "exact"
	ConfidenceAccountSuffix MatchConfidence = "account_suffix"
)

// CompanyMatchCandidate is a company whose stored IBAN matches a statement account.
type CompanyMatchCandidate struct {
	CompanyID   string          `json:"companyId"`
	CompanyName string          `json:"companyName"`
	IBAN        string          `json:"iban"`
	Confidence  MatchConfidence `json:"confidence"`
}

// ResolutionStatus distinguishes the three outcomes of company resolution.
type ResolutionStatus string

const (
	ResolutionUnmatched ResolutionStatus = "unmatched"
	ResolutionMatched   ResolutionStatus = "matched"
	ResolutionAmbiguous ResolutionStatus = "ambiguous"
)

// Resolution is the outcome of matching a statement account against known
// companies. Unmatched and Ambiguous require an operator decision.
type Resolution struct {
	Status     ResolutionStatus        `json:"status"`
	Candidates []CompanyMatchCandidate `json:"candidates"`
}

// NewResolution derives the status from the number of candidates.
func NewResolution(candidates []CompanyMatchCandidate) Resolution {
	if candidates == nil {
		candidates = []CompanyMatchCandidate{}
	}
	switch len(candidates) {
	case 0:
		return Resolution{Status: ResolutionUnmatched, Candidates: candidates}
	case 1:
		return Resolution{Status: ResolutionMatched, Candidates: candidates}
	default:
		return Resolution{Status: ResolutionAmbiguous, Candidates: candidates}
	}
}

// Company returns the single matched company, if the resolution is Matched.
func (r Resolution) Company() (CompanyMatchCandidate, bool) {
	if r.Status != ResolutionMatched || len(r.Candidates) != 1 {
		return CompanyMatchCandidate{}, false
	}
	return r.Candidates[0], true
}
