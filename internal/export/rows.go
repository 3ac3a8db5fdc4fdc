// Package export flattens ingested statements into one row per transaction
// and writes them as CSV or XLSX.
package export

import (
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"
)

const (
	DefaultDelimiter  = ','
	DefaultDateFormat = "02/01/2006"
)

// Options controls the rendering of rows.
type Options struct {
	Delimiter  rune
	DateFormat string
}

// DefaultOptions returns comma-separated rows with Spanish dates.
func DefaultOptions() Options {
	return Options{Delimiter: DefaultDelimiter, DateFormat: DefaultDateFormat}
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.DateFormat == "" {
		o.DateFormat = DefaultDateFormat
	}
	return o
}

// Row is one exported transaction. Amounts are signed, debits negative.
type Row struct {
	CompanyID      string `csv:"CompanyID"`
	Resolution     string `csv:"Resolution"`
	Account        string `csv:"Account"`
	Format         string `csv:"Format"`
	BookingDate    string `csv:"BookingDate"`
	ValueDate      string `csv:"ValueDate"`
	Amount         string `csv:"Amount"`
	Currency       string `csv:"Currency"`
	Category       string `csv:"Category"`
	Description    string `csv:"Description"`
	Reference      string `csv:"Reference"`
	BankCode       string `csv:"BankCode"`
	Counterparty   string `csv:"Counterparty"`
	DocumentNumber string `csv:"DocumentNumber"`
	OriginalAmount string `csv:"OriginalAmount"`
}

// Rows flattens results in statement then transaction order.
func Rows(results []pipeline.StatementResult, opts Options) []Row {
	opts = opts.withDefaults()

	var rows []Row
	for _, r := range results {
		stmt := r.Statement
		companyID := ""
		if c, ok := r.Resolution.Company(); ok {
			companyID = c.CompanyID
		}
		account := stmt.IBAN
		if account == "" {
			account = stmt.AccountIdentifier
		}

		for _, tx := range stmt.Transactions {
			rows = append(rows, Row{
				CompanyID:      companyID,
				Resolution:     string(r.Resolution.Status),
				Account:        account,
				Format:         string(stmt.Format),
				BookingDate:    formatDate(tx, true, opts.DateFormat),
				ValueDate:      formatDate(tx, false, opts.DateFormat),
				Amount:         tx.SignedAmount().StringFixed(2),
				Currency:       tx.Currency,
				Category:       string(tx.Category),
				Description:    tx.Description,
				Reference:      tx.Reference,
				BankCode:       tx.BankCode,
				Counterparty:   tx.Counterparty,
				DocumentNumber: tx.DocumentNumber,
				OriginalAmount: originalAmount(tx.OriginalAmount),
			})
		}
	}
	return rows
}

func formatDate(tx models.Transaction, booking bool, layout string) string {
	d := tx.Date
	if booking {
		d = tx.BookingDate
	}
	if d.IsZero() {
		return ""
	}
	return d.Format(layout)
}

func originalAmount(m *models.Money) string {
	if m == nil {
		return ""
	}
	return m.Amount.StringFixed(2) + " " + m.Currency
}
