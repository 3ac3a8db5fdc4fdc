// Package pgstore keeps the company directory and imported statements in
// PostgreSQL.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var transactionColumns = []string{
	"statement_id", "position", "booking_date", "value_date", "amount", "currency",
	"category", "description", "reference", "bank_code", "counterparty", "document_number",
}

// Store reads companies and writes statements.
type Store struct {
	db     DB
	pool   *pgxpool.Pool
	logger logging.Logger
}

// New wraps an existing connection.
func New(db DB, logger logging.Logger) *Store {
	return &Store{db: db, logger: logging.OrDefault(logger)}
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger logging.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	s := New(pool, logger)
	s.pool = pool
	return s, nil
}

// Close releases the pool opened by Open.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// LoadCompanies returns the company directory ordered by id.
func (s *Store) LoadCompanies(ctx context.Context) ([]models.CompanyRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, iban FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying companies: %w", err)
	}
	companies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CompanyRecord, error) {
		var c models.CompanyRecord
		err := row.Scan(&c.ID, &c.Name, &c.IBAN)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("error reading companies: %w", err)
	}

	s.logger.Debug("Loaded companies from database",
		logging.Field{Key: logging.FieldCount, Value: len(companies)})
	return companies, nil
}

// SaveImport stores every statement of an import in one database
// transaction: either all of them are committed or none is.
func (s *Store) SaveImport(ctx context.Context, importID uuid.UUID, statements []pipeline.CompanyStatement) ([]uuid.UUID, error) {
	if len(statements) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	ids := make([]uuid.UUID, 0, len(statements))
	transactions := int64(0)
	for i, cs := range statements {
		id, n, err := insertStatement(ctx, tx, importID, cs)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		ids = append(ids, id)
		transactions += n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing import: %w", err)
	}
	committed = true

	s.logger.Info("Saved import",
		logging.Field{Key: logging.FieldImportID, Value: importID.String()},
		logging.Field{Key: logging.FieldStatements, Value: len(ids)},
		logging.Field{Key: logging.FieldCount, Value: transactions})
	return ids, nil
}

func insertStatement(ctx context.Context, tx pgx.Tx, importID uuid.UUID, cs pipeline.CompanyStatement) (uuid.UUID, int64, error) {
	statementID := uuid.New()

	params, err := statementParams(statementID, importID, cs.CompanyID, cs.Statement)
	if err != nil {
		return uuid.Nil, 0, err
	}
	copyRows, err := transactionRows(statementID, cs.Statement.Transactions)
	if err != nil {
		return uuid.Nil, 0, err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO bank_statements
		(id, import_id, company_id, format, account_identifier, iban, bank_name, currency,
		 opening_balance, closing_balance, period_start, period_end, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, params...); err != nil {
		return uuid.Nil, 0, fmt.Errorf("error inserting statement: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"bank_transactions"}, transactionColumns, pgx.CopyFromRows(copyRows))
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("error copying transactions: %w", err)
	}
	return statementID, n, nil
}

func statementParams(id, importID uuid.UUID, companyID string, stmt models.BankStatement) ([]any, error) {
	opening, err := numeric(stmt.OpeningBalance.Amount)
	if err != nil {
		return nil, err
	}
	closing := pgtype.Numeric{}
	if stmt.ClosingBalance != nil {
		if closing, err = numeric(stmt.ClosingBalance.Amount); err != nil {
			return nil, err
		}
	}
	warnings := stmt.Warnings
	if warnings == nil {
		warnings = []models.ReconciliationWarning{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return nil, fmt.Errorf("error encoding warnings: %w", err)
	}

	return []any{
		id, importID, companyID, string(stmt.Format), stmt.AccountIdentifier, stmt.IBAN,
		stmt.BankName, stmt.Currency, opening, closing,
		date(stmt.Period.Start), date(stmt.Period.End), warningsJSON,
	}, nil
}

func transactionRows(statementID uuid.UUID, txs []models.Transaction) ([][]any, error) {
	rows := make([][]any, 0, len(txs))
	for i, t := range txs {
		amount, err := numeric(t.SignedAmount())
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		rows = append(rows, []any{
			statementID, int32(i + 1), date(t.BookingDate), date(t.Date), amount, t.Currency,
			string(t.Category), t.Description, t.Reference, t.BankCode, t.Counterparty, t.DocumentNumber,
		})
	}
	return rows, nil
}

func numeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return n, fmt.Errorf("error encoding amount %s: %w", d, err)
	}
	return n, nil
}

func date(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}
