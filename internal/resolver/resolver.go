// Package resolver maps the account identifier of a parsed statement to the
// tenant company that owns the account.
package resolver

import (
	"inmova/bank-import/internal/bankdata"
	"inmova/bank-import/internal/models"
)

// suffixDigits is the length of the account number proper in a Spanish CCC.
const suffixDigits = 10

// Normalize strips every non-alphanumeric character and uppercases the rest.
func Normalize(identifier string) string {
	return bankdata.NormalizeAccount(identifier)
}

// ResolveCompany finds the companies whose registered IBAN matches
// accountIdentifier. Exact normalized matches win; otherwise companies are
// compared on the bank, branch and account number, which links a legacy
// Norma 43 code or CCC to the IBAN on file. An unmatched identifier is not
// an error, and an ambiguous one is never narrowed automatically.
func ResolveCompany(accountIdentifier string, companies []models.CompanyRecord) models.Resolution {
	target := Normalize(accountIdentifier)
	if target == "" {
		return models.NewResolution(nil)
	}

	if exact := match(companies, models.ConfidenceExact, func(iban string) bool {
		return iban == target
	}); len(exact) > 0 {
		return models.NewResolution(exact)
	}

	targetKey, keyed := bankdata.AccountKey(target)
	targetSuffix := trailingDigits(target, suffixDigits)
	return models.NewResolution(match(companies, models.ConfidenceAccountSuffix, func(iban string) bool {
		if keyed {
			key, ok := bankdata.AccountKey(iban)
			return ok && key == targetKey
		}
		return targetSuffix != "" && trailingDigits(iban, suffixDigits) == targetSuffix
	}))
}

// ResolveWithHint tries each identifier in turn (IBAN before legacy code)
// and keeps the first non-empty resolution. When that resolution is
// ambiguous and companyID is among its candidates, it is narrowed to that
// company, since the uploader named it explicitly.
func ResolveWithHint(identifiers []string, companies []models.CompanyRecord, companyID string) models.Resolution {
	resolution := models.NewResolution(nil)
	for _, id := range identifiers {
		resolution = ResolveCompany(id, companies)
		if resolution.Status != models.ResolutionUnmatched {
			break
		}
	}

	if resolution.Status == models.ResolutionAmbiguous && companyID != "" {
		for _, c := range resolution.Candidates {
			if c.CompanyID == companyID {
				return models.NewResolution([]models.CompanyMatchCandidate{c})
			}
		}
	}
	return resolution
}

func match(companies []models.CompanyRecord, confidence models.MatchConfidence, pred func(iban string) bool) []models.CompanyMatchCandidate {
	var candidates []models.CompanyMatchCandidate
	for _, c := range companies {
		iban := Normalize(c.IBAN)
		if iban == "" || !pred(iban) {
			continue
		}
		candidates = append(candidates, models.CompanyMatchCandidate{
			CompanyID:   c.ID,
			CompanyName: c.Name,
			IBAN:        c.IBAN,
			Confidence:  confidence,
		})
	}
	return candidates
}

// trailingDigits returns the last n characters of s when they are all
// digits, or "".
func trailingDigits(s string, n int) string {
	if len(s) < n {
		return ""
	}
	tail := s[len(s)-n:]
	for _, r := range tail {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return tail
}
