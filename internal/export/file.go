package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/pipeline"
)

// WriteFile writes results to path, as XLSX when the extension is .xlsx and
// as CSV otherwise.
func WriteFile(path string, results []pipeline.StatementResult, opts Options, logger logging.Logger) (err error) {
	logger = logging.OrDefault(logger)
	rows := Rows(results, opts)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = WriteXLSX(file, rows)
	} else {
		err = WriteCSV(file, rows, opts)
	}
	if err != nil {
		return err
	}

	logger.Info("Wrote transactions",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return nil
}
