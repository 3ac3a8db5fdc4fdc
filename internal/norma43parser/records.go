package norma43parser

import (
	"strings"
	"time"

	"inmova/bank-import/internal/fixedwidth"
	"inmova/bank-import/internal/models"

	"github.com/shopspring/decimal"
)

// Record codes of AEB Cuaderno 43.
const (
	recordHeader      = "11"
	recordTransaction = "22"
	recordConcept     = "23"
	recordEquivalence = "24"
	recordTrailer     = "33"
	recordEndOfFile   = "88"
)

const amountDecimals = 2

// fieldReader decodes named fields from a record and keeps the first
// failure, so a record decoder reads like a field list and checks once.
type fieldReader struct {
	rec   fixedwidth.Record
	field string
	err   error
}

func (r *fieldReader) fail(field string, err error) {
	if r.err == nil {
		r.field, r.err = field, err
	}
}

func (r *fieldReader) digits(field string, start, end int) string {
	if r.err != nil {
		return ""
	}
	v, err := r.rec.Digits(start, end)
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) count(field string, start, end int) int {
	if r.err != nil {
		return 0
	}
	v, err := r.rec.Int(start, end)
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) amount(field string, start, end int) decimal.Decimal {
	if r.err != nil {
		return decimal.Zero
	}
	v, err := r.rec.Amount(start, end, amountDecimals)
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) sign(field string, col int) models.Sign {
	if r.err != nil {
		return ""
	}
	v, err := r.rec.Sign(col)
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) date(field string, start, end int) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, err := r.rec.Date(start, end)
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) text(start, end int) string {
	return r.rec.Text(start, end)
}

func signed(amount decimal.Decimal, sign models.Sign) decimal.Decimal {
	if sign == models.SignDebit {
		return amount.Neg()
	}
	return amount
}

// accountHeader is record 11.
type accountHeader struct {
	bank     string
	branch   string
	account  string
	start    time.Time
	end      time.Time
	opening  decimal.Decimal
	currency string
	infoMode string
	holder   string
}

func (h accountHeader) accountCode() string {
	return h.bank + h.branch + h.account
}

func decodeHeader(r *fieldReader) accountHeader {
	var h accountHeader
	h.bank = r.digits("bank", 3, 6)
	h.branch = r.digits("branch", 7, 10)
	h.account = r.digits("account", 11, 20)
	h.start = r.date("start date", 21, 26)
	h.end = r.date("end date", 27, 32)
	sign := r.sign("opening balance sign", 33)
	h.opening = signed(r.amount("opening balance", 34, 47), sign)
	h.currency = r.digits("currency", 48, 50)
	h.infoMode = r.text(51, 51)
	h.holder = r.text(52, 77)
	return h
}

// movement is record 22.
type movement struct {
	branch         string
	bookingDate    time.Time
	valueDate      time.Time
	commonConcept  string
	ownConcept     string
	sign           models.Sign
	amount         decimal.Decimal
	documentNumber string
	reference1     string
	reference2     string
}

func decodeMovement(r *fieldReader) movement {
	var m movement
	m.branch = r.text(7, 10)
	m.bookingDate = r.date("booking date", 11, 16)
	m.valueDate = r.date("value date", 17, 22)
	m.commonConcept = r.digits("common concept", 23, 24)
	m.ownConcept = r.text(25, 27)
	m.sign = r.sign("sign", 28)
	m.amount = r.amount("amount", 29, 42)
	m.documentNumber = r.text(43, 52)
	m.reference1 = r.text(53, 64)
	m.reference2 = r.text(65, 80)
	return m
}

// reference returns the first meaningful reference field. Banks fill
// unused references with zeros.
func (m movement) reference() string {
	for _, ref := range []string{m.reference1, m.reference2} {
		if strings.Trim(ref, "0 ") != "" {
			return ref
		}
	}
	return ""
}

// decodeConcepts returns the non-blank concept fields of record 23.
func decodeConcepts(r *fieldReader) []string {
	r.digits("data code", 3, 4)
	var parts []string
	for _, field := range [][2]int{{5, 42}, {43, 80}} {
		if s := r.text(field[0], field[1]); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// equivalence is record 24.
type equivalence struct {
	currency string
	amount   decimal.Decimal
}

func decodeEquivalence(r *fieldReader) equivalence {
	var e equivalence
	r.digits("data code", 3, 4)
	e.currency = r.digits("original currency", 5, 7)
	e.amount = r.amount("equivalent amount", 8, 21)
	return e
}

// accountTrailer is record 33.
type accountTrailer struct {
	bank        string
	branch      string
	account     string
	debitCount  int
	debitTotal  decimal.Decimal
	creditCount int
	creditTotal decimal.Decimal
	closing     decimal.Decimal
	currency    string
}

func (t accountTrailer) accountCode() string {
	return t.bank + t.branch + t.account
}

func decodeTrailer(r *fieldReader) accountTrailer {
	var t accountTrailer
	t.bank = r.digits("bank", 3, 6)
	t.branch = r.digits("branch", 7, 10)
	t.account = r.digits("account", 11, 20)
	t.debitCount = r.count("debit count", 21, 25)
	t.debitTotal = r.amount("debit total", 26, 39)
	t.creditCount = r.count("credit count", 40, 44)
	t.creditTotal = r.amount("credit total", 45, 58)
	sign := r.sign("closing balance sign", 59)
	t.closing = signed(r.amount("closing balance", 60, 73), sign)
	t.currency = r.digits("currency", 74, 76)
	return t
}

// decodeEndOfFile returns the record count declared by record 88.
func decodeEndOfFile(r *fieldReader) int {
	return r.count("record count", 21, 26)
}
