// Package norma43parser parses AEB Cuaderno 43 (Norma 43) bank statements,
// the fixed-width 80-column format exported by Spanish banks.
package norma43parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"inmova/bank-import/internal/bankdata"
	"inmova/bank-import/internal/fixedwidth"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parser"
	"inmova/bank-import/internal/parsererror"

	"github.com/shopspring/decimal"
)

const (
	parserName = "Norma43"

	// DefaultMaxDescriptionLength caps the concatenated concept text of a
	// transaction, in runes.
	DefaultMaxDescriptionLength = 256

	lineWidth = 80
)

// Options tunes parsing. Zero fields take their defaults.
type Options struct {
	CenturyPivot         int
	MaxDescriptionLength int
	AllowShortLines      bool
}

func (o Options) withDefaults() Options {
	if o.CenturyPivot <= 0 {
		o.CenturyPivot = fixedwidth.DefaultCenturyPivot
	}
	if o.MaxDescriptionLength <= 0 {
		o.MaxDescriptionLength = DefaultMaxDescriptionLength
	}
	return o
}

// Parser parses Norma 43 text. It holds no per-file state and is safe for
// concurrent use.
type Parser struct {
	parser.BaseParser
	opts Options
}

// NewParser creates a Norma 43 parser. A nil logger falls back to the default.
func NewParser(logger logging.Logger, opts Options) *Parser {
	return &Parser{
		BaseParser: parser.NewBaseParser(logger),
		opts:       opts.withDefaults(),
	}
}

// Format implements parser.StatementParser.
func (p *Parser) Format() models.Format {
	return models.FormatNorma43
}

// ParseStatements implements parser.StatementParser.
func (p *Parser) ParseStatements(text string) ([]models.BankStatement, error) {
	return p.ParseAll(text)
}

// Parse parses a file holding exactly one account. Files with several
// accounts must go through ParseAll.
func (p *Parser) Parse(text string) (*models.BankStatement, error) {
	blocks, err := p.parse(text)
	if err != nil {
		return nil, err
	}
	if len(blocks) > 1 {
		return nil, &parsererror.ParseError{
			Parser:     parserName,
			Line:       blocks[1].headerLine,
			RecordType: recordHeader,
			Err:        fmt.Errorf("file contains %d accounts, expected one", len(blocks)),
		}
	}
	stmt := blocks[0].stmt
	return &stmt, nil
}

// ParseAll parses every account block (11 … 33) of the file, in order.
func (p *Parser) ParseAll(text string) ([]models.BankStatement, error) {
	blocks, err := p.parse(text)
	if err != nil {
		return nil, err
	}
	statements := make([]models.BankStatement, 0, len(blocks))
	for _, b := range blocks {
		statements = append(statements, b.stmt)
	}
	return statements, nil
}

// accountBlock accumulates one account between its 11 and 33 records.
type accountBlock struct {
	stmt       models.BankStatement
	headerLine int
	currency   string // ISO numeric code of the header
	pending    *pendingMovement
	closed     bool
}

// pendingMovement is a transaction still open to 23 and 24 records.
type pendingMovement struct {
	tx       models.Transaction
	concepts []string
}

// fileState is the parse state of one call; Parser itself stays stateless.
type fileState struct {
	blocks      []*accountBlock
	current     *accountBlock
	recordCount int
	endOfFile   bool
}

func (p *Parser) parse(text string) ([]*accountBlock, error) {
	logger := p.GetLogger().WithField(logging.FieldParser, parserName)
	logger.Debug("Parsing Norma 43 statement")

	st := &fileState{}
	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := p.parseLine(st, lineNo, line); err != nil {
			logger.WithError(err).Debug("Norma 43 parse failed",
				logging.Field{Key: logging.FieldLine, Value: lineNo})
			return nil, err
		}
		if st.endOfFile {
			break
		}
	}

	if st.current != nil {
		p.closeWithoutTrailer(st.current)
	}
	if len(st.blocks) == 0 {
		return nil, &parsererror.ParseError{
			Parser: parserName,
			Err:    errors.New("no account header (record 11) found"),
		}
	}
	if !st.endOfFile {
		last := &st.blocks[len(st.blocks)-1].stmt
		last.AddWarning(models.ReconciliationWarning{
			Kind:    models.WarningMissingTrailer,
			Message: "end of file record 88 is missing",
		})
	}

	for _, b := range st.blocks {
		p.LogWarnings(&b.stmt)
	}
	logger.Info("Parsed Norma 43 statement",
		logging.Field{Key: logging.FieldStatements, Value: len(st.blocks)},
		logging.Field{Key: logging.FieldCount, Value: st.transactionCount()})
	return st.blocks, nil
}

func (st *fileState) transactionCount() int {
	n := 0
	for _, b := range st.blocks {
		n += len(b.stmt.Transactions)
	}
	return n
}

func (p *Parser) parseLine(st *fileState, lineNo int, line string) error {
	width := utf8.RuneCountInString(line)
	code := ""
	if width >= 2 {
		code = string([]rune(line)[:2])
	}
	if width != lineWidth && !(p.opts.AllowShortLines && width >= 2 && width < lineWidth) {
		return structuralError(lineNo, code, fmt.Errorf("expected %d columns, got %d", lineWidth, width))
	}

	r := &fieldReader{rec: fixedwidth.NewRecord(line).WithCenturyPivot(p.opts.CenturyPivot)}
	var err error
	switch code {
	case recordHeader:
		err = p.onHeader(st, lineNo, r)
	case recordTransaction:
		err = p.onMovement(st, lineNo, r)
	case recordConcept:
		err = p.onConcept(st, lineNo, r)
	case recordEquivalence:
		err = p.onEquivalence(st, lineNo, r)
	case recordTrailer:
		err = p.onTrailer(st, lineNo, r)
	case recordEndOfFile:
		err = p.onEndOfFile(st, lineNo, r)
	default:
		return structuralError(lineNo, code, fmt.Errorf("unknown record code '%s'", code))
	}
	if err != nil {
		return err
	}
	if code != recordEndOfFile {
		st.recordCount++
	}
	return nil
}

func (p *Parser) onHeader(st *fileState, lineNo int, r *fieldReader) error {
	if st.current != nil {
		p.closeWithoutTrailer(st.current)
	}

	h := decodeHeader(r)
	if r.err != nil {
		return fieldError(lineNo, recordHeader, r)
	}
	currency, ok := bankdata.CurrencyFromNumeric(h.currency)
	if !ok {
		return &parsererror.ParseError{
			Parser: parserName, Line: lineNo, RecordType: recordHeader,
			Field: "currency", Value: h.currency, Err: errors.New("unknown ISO 4217 numeric code"),
		}
	}

	stmt := models.BankStatement{
		Format:            models.FormatNorma43,
		AccountIdentifier: h.accountCode(),
		AccountHolder:     h.holder,
		Currency:          currency,
		OpeningBalance:    models.NewMoney(h.opening, currency),
		Period:            models.Period{Start: h.start, End: h.end},
		Transactions:      []models.Transaction{},
	}
	if iban, err := bankdata.SpanishIBAN(h.bank, h.branch, h.account); err == nil {
		stmt.IBAN = iban
	}
	if name, ok := bankdata.BankName(h.bank); ok {
		stmt.BankName = name
	}

	block := &accountBlock{stmt: stmt, headerLine: lineNo, currency: h.currency}
	st.blocks = append(st.blocks, block)
	st.current = block
	return nil
}

func (p *Parser) onMovement(st *fileState, lineNo int, r *fieldReader) error {
	if st.current == nil {
		return structuralError(lineNo, recordTransaction, errors.New("transaction record outside an account block"))
	}
	m := decodeMovement(r)
	if r.err != nil {
		return fieldError(lineNo, recordTransaction, r)
	}
	p.flushPending(st.current)

	st.current.pending = &pendingMovement{
		tx: models.Transaction{
			Date:           m.valueDate,
			BookingDate:    m.bookingDate,
			Amount:         m.amount,
			Sign:           m.sign,
			Currency:       st.current.stmt.Currency,
			Reference:      m.reference(),
			BankCode:       m.commonConcept,
			DocumentNumber: strings.TrimLeft(m.documentNumber, "0"),
			Line:           lineNo,
		},
	}
	return nil
}

func (p *Parser) onConcept(st *fileState, lineNo int, r *fieldReader) error {
	if st.current == nil || st.current.pending == nil {
		return structuralError(lineNo, recordConcept, errors.New("concept record without a preceding transaction record"))
	}
	parts := decodeConcepts(r)
	if r.err != nil {
		return fieldError(lineNo, recordConcept, r)
	}
	st.current.pending.concepts = append(st.current.pending.concepts, parts...)
	return nil
}

func (p *Parser) onEquivalence(st *fileState, lineNo int, r *fieldReader) error {
	if st.current == nil || st.current.pending == nil {
		return structuralError(lineNo, recordEquivalence, errors.New("equivalence record without a preceding transaction record"))
	}
	e := decodeEquivalence(r)
	if r.err != nil {
		return fieldError(lineNo, recordEquivalence, r)
	}
	currency, ok := bankdata.CurrencyFromNumeric(e.currency)
	if !ok {
		return &parsererror.ParseError{
			Parser: parserName, Line: lineNo, RecordType: recordEquivalence,
			Field: "original currency", Value: e.currency, Err: errors.New("unknown ISO 4217 numeric code"),
		}
	}
	original := models.NewMoney(e.amount, currency)
	st.current.pending.tx.OriginalAmount = &original
	return nil
}

func (p *Parser) onTrailer(st *fileState, lineNo int, r *fieldReader) error {
	if st.current == nil {
		return structuralError(lineNo, recordTrailer, errors.New("account trailer without an account header"))
	}
	t := decodeTrailer(r)
	if r.err != nil {
		return fieldError(lineNo, recordTrailer, r)
	}
	block := st.current
	if t.accountCode() != block.stmt.AccountIdentifier {
		return &parsererror.ParseError{
			Parser: parserName, Line: lineNo, RecordType: recordTrailer,
			Field: "account", Value: t.accountCode(),
			Err: fmt.Errorf("trailer does not match account header %s", block.stmt.AccountIdentifier),
		}
	}
	p.flushPending(block)
	reconcileTrailer(block, t, lineNo)
	block.closed = true
	st.current = nil
	return nil
}

func (p *Parser) onEndOfFile(st *fileState, lineNo int, r *fieldReader) error {
	declared := decodeEndOfFile(r)
	if r.err != nil {
		return fieldError(lineNo, recordEndOfFile, r)
	}
	if st.current != nil {
		p.closeWithoutTrailer(st.current)
		st.current = nil
	}
	if len(st.blocks) > 0 && declared != st.recordCount {
		last := &st.blocks[len(st.blocks)-1].stmt
		last.AddWarning(models.ReconciliationWarning{
			Kind:     models.WarningRecordCountMismatch,
			Message:  "end of file record count does not match the records read",
			Expected: fmt.Sprint(declared),
			Actual:   fmt.Sprint(st.recordCount),
			Line:     lineNo,
		})
	}
	st.endOfFile = true
	return nil
}

// flushPending appends the open transaction, with its concatenated
// description, to the block.
func (p *Parser) flushPending(block *accountBlock) {
	if block.pending == nil {
		return
	}
	tx := block.pending.tx
	description := strings.Join(block.pending.concepts, " ")
	if utf8.RuneCountInString(description) > p.opts.MaxDescriptionLength {
		full := utf8.RuneCountInString(description)
		description = strings.TrimSpace(string([]rune(description)[:p.opts.MaxDescriptionLength]))
		block.stmt.AddWarning(models.ReconciliationWarning{
			Kind:     models.WarningDescriptionTruncated,
			Message:  "transaction description truncated",
			Expected: fmt.Sprint(p.opts.MaxDescriptionLength),
			Actual:   fmt.Sprint(full),
			Line:     tx.Line,
		})
	}
	tx.Description = description
	block.stmt.Transactions = append(block.stmt.Transactions, tx)
	block.pending = nil
}

func (p *Parser) closeWithoutTrailer(block *accountBlock) {
	p.flushPending(block)
	if block.closed {
		return
	}
	block.stmt.AddWarning(models.ReconciliationWarning{
		Kind:    models.WarningMissingTrailer,
		Message: "account trailer record 33 is missing; closing balance unknown",
		Line:    block.headerLine,
	})
	block.closed = true
}

// reconcileTrailer compares the totals declared by record 33 with the parsed
// transactions and records every difference as a warning.
func reconcileTrailer(block *accountBlock, t accountTrailer, lineNo int) {
	stmt := &block.stmt

	var debitCount, creditCount int
	debitTotal, creditTotal := decimal.Zero, decimal.Zero
	for _, tx := range stmt.Transactions {
		if tx.IsDebit() {
			debitCount++
			debitTotal = debitTotal.Add(tx.Amount)
		} else {
			creditCount++
			creditTotal = creditTotal.Add(tx.Amount)
		}
	}

	warn := func(kind models.WarningKind, msg, expected, actual string) {
		stmt.AddWarning(models.ReconciliationWarning{
			Kind: kind, Message: msg, Expected: expected, Actual: actual, Line: lineNo,
		})
	}

	if t.debitCount != debitCount {
		warn(models.WarningTransactionCountMismatch, "debit count in trailer does not match parsed debits",
			fmt.Sprint(t.debitCount), fmt.Sprint(debitCount))
	}
	if t.creditCount != creditCount {
		warn(models.WarningTransactionCountMismatch, "credit count in trailer does not match parsed credits",
			fmt.Sprint(t.creditCount), fmt.Sprint(creditCount))
	}
	if !t.debitTotal.Equal(debitTotal) {
		warn(models.WarningDebitTotalMismatch, "debit total in trailer does not match parsed debits",
			t.debitTotal.StringFixed(2), debitTotal.StringFixed(2))
	}
	if !t.creditTotal.Equal(creditTotal) {
		warn(models.WarningCreditTotalMismatch, "credit total in trailer does not match parsed credits",
			t.creditTotal.StringFixed(2), creditTotal.StringFixed(2))
	}
	if t.currency != block.currency {
		warn(models.WarningCurrencyMismatch, "trailer currency differs from account header",
			block.currency, t.currency)
	}

	closing := models.NewMoney(t.closing, stmt.Currency)
	stmt.ClosingBalance = &closing
	if computed := stmt.ComputedClosingBalance(); !computed.Amount.Equal(closing.Amount) {
		warn(models.WarningBalanceMismatch, "closing balance does not equal opening balance plus movements",
			closing.String(), computed.String())
	}
}

func structuralError(lineNo int, code string, err error) error {
	return &parsererror.ParseError{Parser: parserName, Line: lineNo, RecordType: code, Err: err}
}

func fieldError(lineNo int, code string, r *fieldReader) error {
	pe := &parsererror.ParseError{
		Parser:     parserName,
		Line:       lineNo,
		RecordType: code,
		Field:      r.field,
		Err:        r.err,
	}
	var fe *fixedwidth.FieldError
	if errors.As(r.err, &fe) {
		pe.Value = fe.Value
	}
	return pe
}
