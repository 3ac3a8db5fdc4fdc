package norma43parser

import (
	"fmt"
	"strings"
)

// Builders for 80-column Norma 43 records. Amounts are in cents.

func headerLine(bank, branch, account, start, end string, sign byte, cents int64, currency, holder string) string {
	return fmt.Sprintf("11%4s%4s%10s%6s%6s%c%014d%3s%1s%-26s%3s",
		bank, branch, account, start, end, sign, cents, currency, "3", holder, "")
}

func movementLine(booking, value, concept string, sign byte, cents int64, doc int64, ref1, ref2 string) string {
	return fmt.Sprintf("22%4s%4s%6s%6s%2s%3s%c%014d%010d%-12s%-16s",
		"", "0250", booking, value, concept, "017", sign, cents, doc, ref1, ref2)
}

func conceptLine(code, first, second string) string {
	return fmt.Sprintf("23%2s%-38s%-38s", code, first, second)
}

func equivalenceLine(currency string, cents int64) string {
	return fmt.Sprintf("24%2s%3s%014d%59s", "01", currency, cents, "")
}

func trailerLine(bank, branch, account string, debits int, debitCents int64, credits int, creditCents int64, sign byte, closingCents int64, currency string) string {
	return fmt.Sprintf("33%4s%4s%10s%05d%014d%05d%014d%c%014d%3s%4s",
		bank, branch, account, debits, debitCents, credits, creditCents, sign, closingCents, currency, "")
}

func endOfFileLine(records int) string {
	return fmt.Sprintf("88%18s%06d%54s", strings.Repeat("9", 18), records, "")
}

func file(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

// feeStatement is one account opening at 1000.00 with a single 50.00 bank
// fee and a closing balance of 950.00.
func feeStatement() string {
	return file(
		headerLine("0128", "0250", "0100083954", "240101", "240131", '2', 100000, "978", "INMOBILIARIA EJEMPLO SL"),
		movementLine("240115", "240115", "04", '1', 5000, 0, "000000000000", ""),
		conceptLine("01", "COMISION MANTENIMIENTO", ""),
		trailerLine("0128", "0250", "0100083954", 1, 5000, 0, 0, '2', 95000, "978"),
		endOfFileLine(4),
	)
}
