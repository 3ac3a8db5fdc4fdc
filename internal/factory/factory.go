// Package factory builds the statement parser for a detected format.
package factory

import (
	"inmova/bank-import/internal/camtparser"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/norma43parser"
	"inmova/bank-import/internal/parser"
)

// Options carries format-specific parser settings.
type Options struct {
	Norma43 norma43parser.Options
}

// Parsers returns one parser per supported format, keyed by format.
func Parsers(opts Options, logger logging.Logger) map[models.Format]parser.StatementParser {
	return map[models.Format]parser.StatementParser{
		models.FormatNorma43: norma43parser.NewParser(logger, opts.Norma43),
		models.FormatCAMT053: camtparser.NewParser(logger),
	}
}
