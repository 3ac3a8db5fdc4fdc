// Package fixedwidth decodes fields of fixed-column text records such as the
// 80-column lines of a Norma 43 file. Columns are 1-based and inclusive, as
// they are printed in bank format documentation.
package fixedwidth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"inmova/bank-import/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultCenturyPivot maps two-digit years 00-49 to 2000-2049 and 50-99 to
// 1950-1999.
const DefaultCenturyPivot = 50

// FieldError describes a field whose raw content could not be decoded.
type FieldError struct {
	Start  int
	End    int
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("columns %d-%d ('%s'): %s", e.Start, e.End, e.Value, e.Reason)
}

// Record is one decoded line. Columns are addressed by rune, so multi-byte
// characters in names and concepts do not shift the layout.
type Record struct {
	runes []rune
	pivot int
}

// NewRecord wraps line, minus any trailing carriage return.
func NewRecord(line string) Record {
	return Record{
		runes: []rune(strings.TrimRight(line, "\r")),
		pivot: DefaultCenturyPivot,
	}
}

// WithCenturyPivot returns a copy of r that maps two-digit years below pivot
// to the 2000s.
func (r Record) WithCenturyPivot(pivot int) Record {
	r.pivot = pivot
	return r
}

// Len returns the number of columns in the record.
func (r Record) Len() int {
	return len(r.runes)
}

// Code returns the two-column record code.
func (r Record) Code() string {
	return r.Raw(1, 2)
}

// Raw returns columns start..end untouched. Columns past the end of a short
// line read as blanks.
func (r Record) Raw(start, end int) string {
	if start < 1 || end < start {
		return ""
	}
	var b strings.Builder
	for col := start; col <= end; col++ {
		if col > len(r.runes) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r.runes[col-1])
	}
	return b.String()
}

// Text returns columns start..end with surrounding padding removed.
func (r Record) Text(start, end int) string {
	return strings.TrimSpace(r.Raw(start, end))
}

// Digits returns columns start..end, which must all be ASCII digits.
func (r Record) Digits(start, end int) (string, error) {
	raw := r.Raw(start, end)
	if raw == "" {
		return "", &FieldError{Start: start, End: end, Reason: "invalid column range"}
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", &FieldError{Start: start, End: end, Value: raw, Reason: "expected digits"}
		}
	}
	return raw, nil
}

// Int decodes a zero-padded unsigned integer.
func (r Record) Int(start, end int) (int, error) {
	digits, err := r.Digits(start, end)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &FieldError{Start: start, End: end, Value: digits, Reason: err.Error()}
	}
	return n, nil
}

// Amount decodes an unsigned amount with the given number of implied
// decimals, e.g. "00000000005000" with 2 decimals is 50.00.
func (r Record) Amount(start, end, decimals int) (decimal.Decimal, error) {
	digits, err := r.Digits(start, end)
	if err != nil {
		return decimal.Zero, err
	}
	n, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, &FieldError{Start: start, End: end, Value: digits, Reason: err.Error()}
	}
	return n.Shift(int32(-decimals)), nil
}

// Sign decodes a debit/credit indicator: 1 is debit, 2 is credit.
func (r Record) Sign(col int) (models.Sign, error) {
	switch raw := r.Raw(col, col); raw {
	case "1":
		return models.SignDebit, nil
	case "2":
		return models.SignCredit, nil
	default:
		return "", &FieldError{Start: col, End: col, Value: raw, Reason: "expected sign 1 (debit) or 2 (credit)"}
	}
}

// Date decodes a YYMMDD date in UTC.
func (r Record) Date(start, end int) (time.Time, error) {
	if end-start+1 != 6 {
		return time.Time{}, &FieldError{Start: start, End: end, Reason: "date fields are 6 columns wide"}
	}
	digits, err := r.Digits(start, end)
	if err != nil {
		return time.Time{}, err
	}
	yy, _ := strconv.Atoi(digits[0:2])
	mm, _ := strconv.Atoi(digits[2:4])
	dd, _ := strconv.Atoi(digits[4:6])

	year := 1900 + yy
	if yy < r.pivot {
		year = 2000 + yy
	}
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mm) || t.Day() != dd {
		return time.Time{}, &FieldError{Start: start, End: end, Value: digits, Reason: "not a valid YYMMDD date"}
	}
	return t, nil
}
