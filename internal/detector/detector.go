// Package detector identifies the format of an uploaded bank statement from
// its decoded text, without attempting a parse.
package detector

import (
	"strings"
	"unicode/utf8"

	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parsererror"
)

const (
	// DefaultSniffBytes is how much of the text is searched for CAMT.053 markers.
	DefaultSniffBytes = 4096

	// Norma43LineWidth is the fixed record width of AEB Cuaderno 43.
	Norma43LineWidth = 80

	snippetRunes = 40
)

var norma43RecordCodes = map[string]bool{
	"11": true, // account header
	"22": true, // transaction
	"23": true, // complementary concept
	"24": true, // original currency equivalence
	"33": true, // account trailer
	"88": true, // end of file
}

// Detector holds the detection thresholds. The zero value is usable and
// behaves like Default().
type Detector struct {
	// SniffBytes limits the search for the BkToCstmrStmt marker.
	SniffBytes int
	// AllowShortLines accepts Norma 43 lines shorter than 80 columns, for
	// banks that strip trailing padding.
	AllowShortLines bool
}

// Default returns a Detector with the standard thresholds.
func Default() Detector {
	return Detector{SniffBytes: DefaultSniffBytes}
}

// Detect classifies text with the default thresholds.
func Detect(text string) (models.Format, error) {
	return Default().Detect(text)
}

// Detect classifies text as CAMT.053 or Norma 43. Empty input and anything
// else yield an *parsererror.UnrecognizedFormatError.
func (d Detector) Detect(text string) (models.Format, error) {
	if strings.TrimSpace(text) == "" {
		return models.FormatUnknown, &parsererror.UnrecognizedFormatError{
			Reason: "empty file",
			Hint:   parsererror.DefaultFormatHint,
		}
	}

	if d.looksLikeCAMT(text) {
		return models.FormatCAMT053, nil
	}
	if d.looksLikeNorma43(text) {
		return models.FormatNorma43, nil
	}

	return models.FormatUnknown, &parsererror.UnrecognizedFormatError{
		Reason:  "unrecognized format",
		Hint:    parsererror.DefaultFormatHint,
		Snippet: snippet(text),
	}
}

func (d Detector) looksLikeCAMT(text string) bool {
	if strings.HasPrefix(strings.TrimLeft(text, " \t\r\n\uFEFF"), "<?xml") {
		return true
	}
	limit := d.SniffBytes
	if limit <= 0 {
		limit = DefaultSniffBytes
	}
	window := text
	if len(window) > limit {
		window = window[:limit]
	}
	return strings.Contains(window, "BkToCstmrStmt")
}

func (d Detector) looksLikeNorma43(text string) bool {
	seen := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		width := utf8.RuneCountInString(line)
		switch {
		case width == Norma43LineWidth:
		case d.AllowShortLines && width >= 2 && width < Norma43LineWidth:
		default:
			return false
		}
		if !norma43RecordCodes[line[:2]] {
			return false
		}
		seen = true
		if line[:2] == "88" {
			// anything after the end-of-file record is ignored by the parser
			break
		}
	}
	return seen
}

// snippet returns the start of text on a single line, for error messages.
func snippet(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	runes := []rune(text)
	if len(runes) > snippetRunes {
		return string(runes[:snippetRunes]) + "..."
	}
	return text
}
