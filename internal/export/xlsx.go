package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the transactions.
const SheetName = "Transactions"

var xlsxHeader = []interface{}{
	"CompanyID", "Resolution", "Account", "Format", "BookingDate", "ValueDate",
	"Amount", "Currency", "Category", "Description", "Reference", "BankCode",
	"Counterparty", "DocumentNumber", "OriginalAmount",
}

// WriteXLSX writes rows to a single-sheet workbook. Amounts are kept as text
// so no precision is lost to spreadsheet floats.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.CompanyID, r.Resolution, r.Account, r.Format, r.BookingDate, r.ValueDate,
			r.Amount, r.Currency, r.Category, r.Description, r.Reference, r.BankCode,
			r.Counterparty, r.DocumentNumber, r.OriginalAmount,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "J", "J", 60); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// ReadXLSX reads the Transactions sheet back into raw cell values, header
// included.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	return f.GetRows(SheetName)
}
