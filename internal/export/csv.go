package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row, opts Options) error {
	if rows == nil {
		rows = []Row{}
	}
	opts = opts.withDefaults()

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = opts.Delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
