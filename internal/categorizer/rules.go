package categorizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parsererror"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// compiledRule is a ClassificationRule ready for matching.
type compiledRule struct {
	rule    models.ClassificationRule
	pattern string         // folded pattern for substring rules
	re      *regexp.Regexp // set for regex rules
}

// RuleSet is an immutable, priority-ordered list of compiled rules. It is
// safe for concurrent use.
type RuleSet struct {
	rules []compiledRule
}

// Compile validates rules and orders them by ascending Priority, keeping
// declaration order between equal priorities. Invalid rules are reported as
// *parsererror.ConfigError.
func Compile(rules []models.ClassificationRule) (*RuleSet, error) {
	compiled, errs := compile(rules)
	if len(errs) > 0 {
		return nil, &parsererror.ConfigError{
			Source: "classification rules",
			Reason: strings.Join(errs, "; "),
		}
	}
	return &RuleSet{rules: compiled}, nil
}

// MustCompile is like Compile but panics on invalid rules. It is meant for
// built-in rule sets.
func MustCompile(rules []models.ClassificationRule) *RuleSet {
	rs, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

func compile(rules []models.ClassificationRule) ([]compiledRule, []string) {
	var errs []string
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		name := ruleName(r, i)
		if strings.TrimSpace(r.Pattern) == "" {
			errs = append(errs, fmt.Sprintf("%s: empty pattern", name))
			continue
		}
		if strings.TrimSpace(string(r.Category)) == "" {
			errs = append(errs, fmt.Sprintf("%s: empty category", name))
			continue
		}
		switch r.Field {
		case "", models.FieldDescription, models.FieldReference, models.FieldBankCode, models.FieldAny:
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown field '%s'", name, r.Field))
			continue
		}
		if r.Sign != "" && !r.Sign.Valid() {
			errs = append(errs, fmt.Sprintf("%s: unknown sign '%s'", name, r.Sign))
			continue
		}

		c := compiledRule{rule: r}
		if r.Regex {
			re, err := regexp.Compile("(?i)" + stripAccents(r.Pattern))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: invalid regex: %v", name, err))
				continue
			}
			c.re = re
		} else {
			c.pattern = fold(r.Pattern)
		}
		compiled = append(compiled, c)
	}

	sort.SliceStable(compiled, func(a, b int) bool {
		return compiled[a].rule.Priority < compiled[b].rule.Priority
	})
	return compiled, errs
}

func ruleName(r models.ClassificationRule, index int) string {
	if r.Name != "" {
		return fmt.Sprintf("rule %d (%s)", index+1, r.Name)
	}
	return fmt.Sprintf("rule %d (%s)", index+1, r.Pattern)
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Match returns the first rule matching tx, if any.
func (rs *RuleSet) Match(tx models.Transaction) (models.ClassificationRule, bool) {
	if rs == nil {
		return models.ClassificationRule{}, false
	}
	for _, c := range rs.rules {
		if c.matches(tx) {
			return c.rule, true
		}
	}
	return models.ClassificationRule{}, false
}

// Classify returns the category of the first matching rule, or
// models.CategoryUncategorized.
func (rs *RuleSet) Classify(tx models.Transaction) models.Category {
	if rule, ok := rs.Match(tx); ok {
		return rule.Category
	}
	return models.CategoryUncategorized
}

// Classify assigns a category to tx from rules. Rules that cannot be compiled
// never match; use Compile to surface them as configuration errors.
func Classify(tx models.Transaction, rules []models.ClassificationRule) models.Category {
	compiled, _ := compile(rules)
	return (&RuleSet{rules: compiled}).Classify(tx)
}

func (c compiledRule) matches(tx models.Transaction) bool {
	if c.rule.Sign != "" && c.rule.Sign != tx.Sign {
		return false
	}
	for _, text := range fieldValues(tx, c.rule.Field) {
		if text == "" {
			continue
		}
		if c.re != nil {
			if c.re.MatchString(stripAccents(text)) {
				return true
			}
			continue
		}
		if strings.Contains(fold(text), c.pattern) {
			return true
		}
	}
	return false
}

func fieldValues(tx models.Transaction, field models.RuleField) []string {
	switch field {
	case models.FieldReference:
		return []string{tx.Reference}
	case models.FieldBankCode:
		return []string{tx.BankCode}
	case models.FieldAny:
		return []string{tx.Description, tx.Reference, tx.BankCode, tx.Counterparty}
	default:
		return []string{tx.Description}
	}
}

// fold uppercases s and strips diacritics, so "Comisión" matches "COMISION".
func fold(s string) string {
	return strings.ToUpper(stripAccents(s))
}

// stripAccents removes combining marks. Case is kept so regex escapes such
// as \b and \s survive.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
