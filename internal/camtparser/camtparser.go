// Package camtparser parses ISO 20022 CAMT.053 bank-to-customer statements.
package camtparser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"inmova/bank-import/internal/bankdata"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parser"
	"inmova/bank-import/internal/parsererror"
	"inmova/bank-import/internal/xmlutils"

	"github.com/shopspring/decimal"
)

const (
	parserName = "CAMT.053"
	rootPath   = "Document/BkToCstmrStmt"

	balanceOpening         = "OPBD"
	balancePreviousClosing = "PRCD"
	balanceClosing         = "CLBD"
	balanceInterimBooked   = "ITBD"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Parser parses CAMT.053 text. It is stateless and safe for concurrent use.
type Parser struct {
	parser.BaseParser
}

// NewParser creates a CAMT.053 parser. A nil logger falls back to the default.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{
		BaseParser: parser.NewBaseParser(logger),
	}
}

// Format implements parser.StatementParser.
func (p *Parser) Format() models.Format {
	return models.FormatCAMT053
}

// ParseStatements implements parser.StatementParser.
func (p *Parser) ParseStatements(text string) ([]models.BankStatement, error) {
	return p.Parse(text)
}

// Parse returns one BankStatement per Stmt element, in document order.
// The text must already be UTF-8; the declared XML encoding is ignored.
func (p *Parser) Parse(text string) ([]models.BankStatement, error) {
	logger := p.GetLogger().WithField(logging.FieldParser, parserName)

	var doc document
	if err := xmlutils.NewDecoder(text).Decode(&doc); err != nil {
		return nil, syntaxError(err)
	}
	if len(doc.BkToCstmrStmt.Stmt) == 0 {
		return nil, &parsererror.ParseError{
			Parser: parserName,
			Path:   rootPath,
			Err:    errors.New("document contains no Stmt element"),
		}
	}

	messageID := p.messageID(text)

	statements := make([]models.BankStatement, 0, len(doc.BkToCstmrStmt.Stmt))
	for i := range doc.BkToCstmrStmt.Stmt {
		path := fmt.Sprintf("%s/Stmt[%d]", rootPath, i+1)
		stmt, err := p.convertStatement(&doc.BkToCstmrStmt.Stmt[i], path)
		if err != nil {
			logger.WithError(err).Debug("CAMT.053 parse failed",
				logging.Field{Key: logging.FieldPath, Value: path})
			return nil, err
		}
		stmt.MessageID = messageID
		p.LogWarnings(&stmt)
		statements = append(statements, stmt)
	}

	logger.Info("Parsed CAMT.053 document",
		logging.Field{Key: logging.FieldStatements, Value: len(statements)})
	return statements, nil
}

// messageID reads GrpHdr/MsgId. It is informational, so failures only log.
func (p *Parser) messageID(text string) string {
	root, err := xmlutils.ParseString(text)
	if err != nil {
		p.GetLogger().WithError(err).Debug("Could not read CAMT.053 group header")
		return ""
	}
	return xmlutils.FirstValue(root, xmlutils.DefaultCamt053XPaths().GroupHeader.MessageID)
}

func (p *Parser) convertStatement(s *statement, path string) (models.BankStatement, error) {
	if s.Acct == nil || s.Acct.identifier() == "" {
		return models.BankStatement{}, pathError(path+"/Acct", "", errors.New("account identification (IBAN or Othr/Id) is required"))
	}
	if len(s.Bal) == 0 {
		return models.BankStatement{}, pathError(path+"/Bal", "", errors.New("at least one balance is required"))
	}

	iban := strings.TrimSpace(s.Acct.ID.IBAN)
	stmt := models.BankStatement{
		Format:            models.FormatCAMT053,
		AccountIdentifier: s.Acct.identifier(),
		IBAN:              strings.ReplaceAll(iban, " ", ""),
		AccountHolder:     xmlutils.CleanText(s.Acct.Ownr.Nm),
		BankName:          xmlutils.CleanText(s.Acct.Svcr.FinInstnID.Nm),
		StatementID:       strings.TrimSpace(s.ID),
		Currency:          strings.TrimSpace(s.Acct.Ccy),
		Transactions:      make([]models.Transaction, 0, len(s.Ntry)),
	}
	if stmt.BankName == "" && stmt.IBAN != "" {
		stmt.BankName, _ = bankdata.BankNameFromIBAN(stmt.IBAN)
	}

	bals, err := balances(s.Bal, path)
	if err != nil {
		return models.BankStatement{}, err
	}
	opening := bals.opening()
	if opening == nil && bals.closing == nil {
		return models.BankStatement{}, pathError(path+"/Bal", "", errors.New("no usable balance (OPBD, PRCD, ITBD or CLBD)"))
	}
	if stmt.Currency == "" {
		if opening != nil {
			stmt.Currency = opening.Currency
		} else {
			stmt.Currency = bals.closing.Currency
		}
	}
	if opening != nil {
		stmt.OpeningBalance = *opening
	}
	stmt.ClosingBalance = bals.closing

	for j := range s.Ntry {
		entryPath := fmt.Sprintf("%s/Ntry[%d]", path, j+1)
		tx, err := convertEntry(&s.Ntry[j], entryPath)
		if err != nil {
			return models.BankStatement{}, err
		}
		if tx.Currency == "" {
			tx.Currency = stmt.Currency
		}
		if tx.Currency != stmt.Currency {
			stmt.AddWarning(models.ReconciliationWarning{
				Kind:     models.WarningCurrencyMismatch,
				Message:  "entry currency differs from account currency at " + entryPath,
				Expected: stmt.Currency,
				Actual:   tx.Currency,
			})
		}
		stmt.Transactions = append(stmt.Transactions, tx)
	}

	switch {
	case bals.open == nil && bals.previous == nil && bals.interim != nil:
		stmt.AddWarning(models.ReconciliationWarning{
			Kind:    models.WarningOpeningBalanceDerived,
			Message: "no OPBD or PRCD balance, opening taken from interim booked balance (ITBD)",
		})
	case opening == nil:
		stmt.OpeningBalance = models.Money{
			Amount:   bals.closing.Amount.Sub(stmt.TransactionsTotal()),
			Currency: bals.closing.Currency,
		}
		stmt.AddWarning(models.ReconciliationWarning{
			Kind:    models.WarningOpeningBalanceDerived,
			Message: "no opening balance, derived from closing balance (CLBD) minus movements",
			Actual:  stmt.OpeningBalance.String(),
		})
	}

	stmt.Period, err = statementPeriod(s, path, stmt.Transactions)
	if err != nil {
		return models.BankStatement{}, err
	}

	reconcile(&stmt)
	return stmt, nil
}

// statementBalances holds the first balance of each type used.
type statementBalances struct {
	open, previous, interim, closing *models.Money
}

// opening prefers OPBD, then PRCD, then ITBD. Nil when none is present.
func (b statementBalances) opening() *models.Money {
	for _, m := range []*models.Money{b.open, b.previous, b.interim} {
		if m != nil {
			return m
		}
	}
	return nil
}

func balances(bals []balance, path string) (statementBalances, error) {
	var out statementBalances
	for k, b := range bals {
		var slot **models.Money
		switch b.code() {
		case balanceOpening:
			slot = &out.open
		case balancePreviousClosing:
			slot = &out.previous
		case balanceInterimBooked:
			slot = &out.interim
		case balanceClosing:
			slot = &out.closing
		default:
			continue
		}
		if *slot != nil {
			continue
		}
		m, err := signedMoney(b.Amt, b.CdtDbtInd, fmt.Sprintf("%s/Bal[%d]", path, k+1))
		if err != nil {
			return statementBalances{}, err
		}
		*slot = &m
	}
	return out, nil
}

func signedMoney(amt *amount, indicator, path string) (models.Money, error) {
	if amt == nil {
		return models.Money{}, pathError(path+"/Amt", "", errors.New("amount is required"))
	}
	value, err := decimal.NewFromString(strings.TrimSpace(amt.Value))
	if err != nil || value.IsNegative() {
		return models.Money{}, pathError(path+"/Amt", amt.Value, errors.New("invalid amount"))
	}
	indicator = strings.TrimSpace(indicator)
	if indicator != "" {
		sign, ok := models.SignFromIndicator(indicator)
		if !ok {
			return models.Money{}, pathError(path+"/CdtDbtInd", indicator, errors.New("expected CRDT or DBIT"))
		}
		if sign == models.SignDebit {
			value = value.Neg()
		}
	}
	return models.NewMoney(value, strings.TrimSpace(amt.Ccy)), nil
}

func convertEntry(e *entry, path string) (models.Transaction, error) {
	if e.Amt == nil {
		return models.Transaction{}, pathError(path+"/Amt", "", errors.New("amount is required"))
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(e.Amt.Value))
	if err != nil || amount.IsNegative() {
		return models.Transaction{}, pathError(path+"/Amt", e.Amt.Value, errors.New("invalid amount"))
	}

	indicator := strings.TrimSpace(e.CdtDbtInd)
	sign, ok := models.SignFromIndicator(indicator)
	if !ok {
		return models.Transaction{}, pathError(path+"/CdtDbtInd", indicator, errors.New("expected CRDT or DBIT"))
	}

	raw, element := e.bookingOrValueDate()
	if raw == "" {
		return models.Transaction{}, pathError(path+"/ValDt", "", errors.New("entry has neither value date nor booking date"))
	}
	valueDate, err := parseDate(raw)
	if err != nil {
		return models.Transaction{}, pathError(path+"/"+element, raw, err)
	}
	var bookingDate time.Time
	if e.BookgDt != nil && e.BookgDt.raw() != "" {
		bookingDate, err = parseDate(e.BookgDt.raw())
		if err != nil {
			return models.Transaction{}, pathError(path+"/BookgDt", e.BookgDt.raw(), err)
		}
	}

	return models.Transaction{
		Date:         valueDate,
		BookingDate:  bookingDate,
		Amount:       amount,
		Sign:         sign,
		Currency:     strings.TrimSpace(e.Amt.Ccy),
		Description:  e.description(),
		Reference:    e.reference(),
		BankCode:     e.bankCode(),
		Counterparty: e.counterparty(sign == models.SignCredit),
		Path:         path,
	}, nil
}

// statementPeriod reads FrToDt, or spans the transaction dates when absent.
func statementPeriod(s *statement, path string, txs []models.Transaction) (models.Period, error) {
	if s.FrToDt != nil && strings.TrimSpace(s.FrToDt.FrDtTm) != "" {
		from, err := parseDate(s.FrToDt.FrDtTm)
		if err != nil {
			return models.Period{}, pathError(path+"/FrToDt/FrDtTm", s.FrToDt.FrDtTm, err)
		}
		to := from
		if strings.TrimSpace(s.FrToDt.ToDtTm) != "" {
			to, err = parseDate(s.FrToDt.ToDtTm)
			if err != nil {
				return models.Period{}, pathError(path+"/FrToDt/ToDtTm", s.FrToDt.ToDtTm, err)
			}
		}
		return models.Period{Start: from, End: to}, nil
	}

	var period models.Period
	for _, tx := range txs {
		if period.Start.IsZero() || tx.Date.Before(period.Start) {
			period.Start = tx.Date
		}
		if tx.Date.After(period.End) {
			period.End = tx.Date
		}
	}
	return period, nil
}

// reconcile checks closing == opening + movements and flags a missing CLBD.
func reconcile(stmt *models.BankStatement) {
	if stmt.ClosingBalance == nil {
		stmt.AddWarning(models.ReconciliationWarning{
			Kind:    models.WarningMissingTrailer,
			Message: "statement has no closing balance (CLBD)",
		})
		return
	}
	if stmt.ClosingBalance.Currency != "" && stmt.ClosingBalance.Currency != stmt.Currency {
		stmt.AddWarning(models.ReconciliationWarning{
			Kind:     models.WarningCurrencyMismatch,
			Message:  "closing balance currency differs from account currency",
			Expected: stmt.Currency,
			Actual:   stmt.ClosingBalance.Currency,
		})
	}
	computed := stmt.ComputedClosingBalance()
	if !computed.Amount.Equal(stmt.ClosingBalance.Amount) {
		stmt.AddWarning(models.ReconciliationWarning{
			Kind:     models.WarningBalanceMismatch,
			Message:  "closing balance does not equal opening balance plus movements",
			Expected: stmt.ClosingBalance.String(),
			Actual:   computed.String(),
		})
	}
}

// parseDate accepts ISODate and ISODateTime values and keeps the calendar
// date only.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO date '%s'", raw)
}

func pathError(path, value string, err error) error {
	pe := &parsererror.ParseError{Parser: parserName, Path: path, Err: err}
	if value != "" {
		pe.Field = path[strings.LastIndex(path, "/")+1:]
		pe.Value = value
	}
	return pe
}

func syntaxError(err error) error {
	pe := &parsererror.ParseError{Parser: parserName, Path: "Document", Err: fmt.Errorf("malformed XML: %w", err)}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		pe.Line = syn.Line
	}
	return pe
}
