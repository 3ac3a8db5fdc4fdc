package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatement() models.BankStatement {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	return models.BankStatement{
		Format:            models.FormatNorma43,
		AccountIdentifier: "012802500100083954",
		IBAN:              "ES5601280250590100083954",
		Currency:          "EUR",
		OpeningBalance:    models.NewMoney(decimal.RequireFromString("1000"), "EUR"),
		Period:            models.Period{Start: day(1), End: day(31)},
		Transactions: []models.Transaction{
			{Date: day(15), Amount: decimal.RequireFromString("50"), Sign: models.SignDebit, Currency: "EUR", Category: models.CategoryBankFee},
			{Date: day(20), BookingDate: day(19), Amount: decimal.RequireFromString("850.25"), Sign: models.SignCredit, Currency: "EUR", Category: models.CategoryRentIncome},
		},
	}
}

func TestTransactionRows(t *testing.T) {
	id := uuid.New()
	rows, err := transactionRows(id, sampleStatement().Transactions)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, r := range rows {
		assert.Len(t, r, len(transactionColumns))
		assert.Equal(t, id, r[0])
	}
	assert.Equal(t, int32(1), rows[0][1])
	assert.False(t, rows[0][2].(pgtype.Date).Valid)
	assert.True(t, rows[1][2].(pgtype.Date).Valid)

	value, err := rows[0][4].(pgtype.Numeric).Value()
	require.NoError(t, err)
	assert.Equal(t, "-50", value)

	value, err = rows[1][4].(pgtype.Numeric).Value()
	require.NoError(t, err)
	assert.Equal(t, "850.25", value)
}

func TestStatementParams(t *testing.T) {
	stmt := sampleStatement()
	params, err := statementParams(uuid.New(), uuid.New(), "c-1", stmt)
	require.NoError(t, err)
	require.Len(t, params, 13)
	assert.Equal(t, "c-1", params[2])
	assert.Equal(t, "norma43", params[3])

	closing, err := params[9].(pgtype.Numeric).Value()
	require.NoError(t, err)
	assert.Nil(t, closing)
	assert.Equal(t, []byte("[]"), params[12])

	balance := models.NewMoney(decimal.RequireFromString("950"), "EUR")
	stmt.ClosingBalance = &balance
	stmt.AddWarning(models.ReconciliationWarning{Kind: models.WarningBalanceMismatch, Message: "closing balance differs"})
	params, err = statementParams(uuid.New(), uuid.New(), "c-1", stmt)
	require.NoError(t, err)
	closing, err = params[9].(pgtype.Numeric).Value()
	require.NoError(t, err)
	assert.Equal(t, "950", closing)
	assert.Contains(t, string(params[12].([]byte)), `"kind":"balance_mismatch"`)
}

func TestStore_Integration(t *testing.T) {
	url := os.Getenv("BANKIMPORT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BANKIMPORT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, url, logging.NewDiscardLogger())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EnsureSchema(ctx))

	companyID := "test-" + uuid.NewString()
	_, err = s.db.Exec(ctx, `INSERT INTO companies (id, name, iban) VALUES ($1, $2, $3)`,
		companyID, "Inmobiliaria Ejemplo SL", "ES5601280250590100083954")
	require.NoError(t, err)

	companies, err := s.LoadCompanies(ctx)
	require.NoError(t, err)
	assert.Contains(t, companies, models.CompanyRecord{ID: companyID, Name: "Inmobiliaria Ejemplo SL", IBAN: "ES5601280250590100083954"})

	ids, err := s.SaveImport(ctx, uuid.New(), []pipeline.CompanyStatement{{CompanyID: companyID, Statement: sampleStatement()}})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	statementID := ids[0]

	rows, err := s.db.Query(ctx, `SELECT amount::text FROM bank_transactions WHERE statement_id = $1 ORDER BY position`, statementID)
	require.NoError(t, err)
	var amounts []string
	for rows.Next() {
		var a string
		require.NoError(t, rows.Scan(&a))
		amounts = append(amounts, a)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"-50.00", "850.25"}, amounts)
}

// fakeTx records statement inserts and fails the insert numbered failOn.
type fakeTx struct {
	pgx.Tx
	failOn     int
	inserts    int
	copies     int
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	tx.inserts++
	if tx.inserts == tx.failOn {
		return pgconn.CommandTag{}, errors.New("unique violation")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	tx.copies++
	n := int64(0)
	for src.Next() {
		n++
	}
	return n, nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx    *fakeTx
	begun int
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.begun++
	return db.tx, nil
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func twoStatements() []pipeline.CompanyStatement {
	second := sampleStatement()
	second.IBAN = "ES9121000418450200051332"
	return []pipeline.CompanyStatement{
		{CompanyID: "c-1", Statement: sampleStatement()},
		{CompanyID: "c-2", Statement: second},
	}
}

func TestSaveImport_OneTransaction(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	s := New(db, logging.NewDiscardLogger())

	ids, err := s.SaveImport(context.Background(), uuid.New(), twoStatements())
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	assert.Equal(t, 1, db.begun)
	assert.Equal(t, 2, db.tx.inserts)
	assert.Equal(t, 2, db.tx.copies)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func TestSaveImport_FailureRollsBackEverything(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{failOn: 2}}
	s := New(db, logging.NewDiscardLogger())

	ids, err := s.SaveImport(context.Background(), uuid.New(), twoStatements())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")
	assert.Nil(t, ids)

	assert.Equal(t, 1, db.begun)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestSaveImport_Empty(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	ids, err := New(db, nil).SaveImport(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 0, db.begun)
}
