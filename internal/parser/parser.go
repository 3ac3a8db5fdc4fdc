package parser

import "inmova/bank-import/internal/models"

// StatementParser turns decoded statement text into bank statements.
//
// Implementations are pure over their input: the same text always yields the
// same statements or the same error. Structural problems are returned as
// *parsererror.ParseError and no partial result is produced.
type StatementParser interface {
	// Format reports the statement format the parser understands.
	Format() models.Format

	// ParseStatements parses every statement contained in text, in file order.
	ParseStatements(text string) ([]models.BankStatement, error)
}
