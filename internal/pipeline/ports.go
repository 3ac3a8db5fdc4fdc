package pipeline

import (
	"context"

	"inmova/bank-import/internal/models"

	"github.com/google/uuid"
)

// CompanyDirectory supplies the tenant's companies for resolution.
type CompanyDirectory interface {
	LoadCompanies(ctx context.Context) ([]models.CompanyRecord, error)
}

// CompanyStatement is a statement resolved to exactly one company.
type CompanyStatement struct {
	CompanyID string
	Statement models.BankStatement
}

// StatementSink persists the resolved statements of one import. SaveImport
// stores all of them or none, and returns their IDs in input order.
type StatementSink interface {
	SaveImport(ctx context.Context, importID uuid.UUID, statements []CompanyStatement) ([]uuid.UUID, error)
}

// Resolved returns the statements resolved to exactly one company, along
// with their index in statements.
func Resolved(statements []StatementResult) ([]CompanyStatement, []int) {
	var out []CompanyStatement
	var index []int
	for i, sr := range statements {
		company, ok := sr.Resolution.Company()
		if !ok {
			continue
		}
		out = append(out, CompanyStatement{CompanyID: company.CompanyID, Statement: sr.Statement})
		index = append(index, i)
	}
	return out, index
}
