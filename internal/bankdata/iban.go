package bankdata

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	spanishIBANLength = 24
	cccLength         = 20
	// Norma 43 headers carry entity, branch and account but no control digits.
	legacyAccountLength = 18
)

var cccWeights = [10]int{1, 2, 4, 8, 5, 10, 9, 7, 3, 6}

// NormalizeAccount strips every non-alphanumeric character and uppercases the
// rest, so "ES56 0128-0250" and "es5601280250" compare equal.
func NormalizeAccount(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// ControlDigits computes the two CCC control digits for a Spanish account
// from its entity, branch and 10-digit account number.
func ControlDigits(entity, branch, account string) (string, error) {
	if !allDigits(entity, 4) || !allDigits(branch, 4) || !allDigits(account, 10) {
		return "", fmt.Errorf("invalid CCC components %q/%q/%q", entity, branch, account)
	}
	first := cccDigit("00" + entity + branch)
	second := cccDigit(account)
	return fmt.Sprintf("%d%d", first, second), nil
}

func cccDigit(ten string) int {
	sum := 0
	for i, r := range ten {
		sum += int(r-'0') * cccWeights[i]
	}
	d := 11 - sum%11
	switch d {
	case 11:
		return 0
	case 10:
		return 1
	default:
		return d
	}
}

// SpanishIBAN builds the IBAN of a Spanish account from the components found
// in a Norma 43 account header.
func SpanishIBAN(entity, branch, account string) (string, error) {
	dc, err := ControlDigits(entity, branch, account)
	if err != nil {
		return "", err
	}
	bban := entity + branch + dc + account
	check := 98 - mod97(bban+"ES00")
	return fmt.Sprintf("ES%02d%s", check, bban), nil
}

// ValidIBAN checks the ISO 7064 mod-97 checksum of an IBAN.
func ValidIBAN(iban string) bool {
	normalized := NormalizeAccount(iban)
	if len(normalized) < 15 || len(normalized) > 34 {
		return false
	}
	if !unicode.IsLetter(rune(normalized[0])) || !unicode.IsLetter(rune(normalized[1])) {
		return false
	}
	return mod97(normalized[4:]+normalized[:4]) == 1
}

// mod97 computes the remainder of the IBAN numeric representation of s,
// letters expanded to two digits (A=10 … Z=35).
func mod97(s string) int {
	rem := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			rem = (rem*100 + v) % 97
		}
	}
	return rem
}

// AccountKey reduces a Spanish account identifier in any of its common forms
// (IBAN, 20-digit CCC, 18-digit Norma 43 code) to entity+branch+account,
// dropping country, check and control digits. ok is false when s is none of
// those forms.
func AccountKey(s string) (key string, ok bool) {
	n := NormalizeAccount(s)
	switch {
	case len(n) == spanishIBANLength && strings.HasPrefix(n, "ES") && allDigits(n[2:], spanishIBANLength-2):
		return n[4:12] + n[14:], true
	case len(n) == cccLength && allDigits(n, cccLength):
		return n[:8] + n[10:], true
	case len(n) == legacyAccountLength && allDigits(n, legacyAccountLength):
		return n, true
	default:
		return "", false
	}
}

func allDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
