// Package parser provides the base parser functionality and common interfaces.
package parser

import (
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
)

// BaseParser provides common functionality for all parser implementations.
//
// Parsers should embed BaseParser to inherit common functionality:
//
//	type MyParser struct {
//		BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a new BaseParser instance with the provided logger.
// If logger is nil, a default logger will be used.
func NewBaseParser(logger logging.Logger) BaseParser {
	return BaseParser{
		logger: logging.OrDefault(logger),
	}
}

// SetLogger replaces the parser's logger. A nil logger is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// LogWarnings reports every reconciliation warning of stmt at warn level.
// Warnings never abort a parse; logging them is the only side effect.
func (b *BaseParser) LogWarnings(stmt *models.BankStatement) {
	for _, w := range stmt.Warnings {
		b.logger.Warn(w.Message,
			logging.Field{Key: logging.FieldWarning, Value: string(w.Kind)},
			logging.Field{Key: logging.FieldAccount, Value: stmt.AccountIdentifier},
			logging.Field{Key: "expected", Value: w.Expected},
			logging.Field{Key: "actual", Value: w.Actual})
	}
}
