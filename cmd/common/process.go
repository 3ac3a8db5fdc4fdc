// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"inmova/bank-import/internal/parsererror"
	"inmova/bank-import/internal/pipeline"
)

// ReadInput reads the statement at path, or stdin when path is empty or "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	return data, nil
}

// Ingest loads the company directory and runs raw through the pipeline.
func Ingest(ctx context.Context, p *pipeline.Pipeline, companies pipeline.CompanyDirectory, raw []byte, companyID string) (*pipeline.Result, error) {
	records, err := companies.LoadCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading companies: %w", err)
	}
	return p.Ingest(raw, pipeline.IngestOptions{Companies: records, CompanyID: companyID})
}

// DescribeError renders err for the terminal, adding the hint and location
// of a rejected file.
func DescribeError(err error) string {
	var formatErr *parsererror.UnrecognizedFormatError
	if errors.As(err, &formatErr) {
		msg := "file rejected: " + formatErr.Reason
		if formatErr.Hint != "" {
			msg += "\n  hint: " + formatErr.Hint
		}
		if formatErr.Snippet != "" {
			msg += fmt.Sprintf("\n  content starts with: %q", formatErr.Snippet)
		}
		return msg
	}
	var parseErr *parsererror.ParseError
	if errors.As(err, &parseErr) {
		return "file rejected: " + parseErr.Error()
	}
	return err.Error()
}

// PrintSummary writes one line per statement of result.
func PrintSummary(w io.Writer, result *pipeline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Format: %s\tEncoding: %s\n", result.Format, result.Encoding)
	fmt.Fprintln(tw, "ACCOUNT\tTRANSACTIONS\tCOMPANY\tREVIEW")
	for _, sr := range result.Statements {
		company := string(sr.Resolution.Status)
		if c, ok := sr.Resolution.Company(); ok {
			company = c.CompanyID
		}

		review := "-"
		if reasons := sr.ReviewReasons(); len(reasons) > 0 {
			parts := make([]string, len(reasons))
			for i, r := range reasons {
				parts[i] = string(r)
			}
			review = strings.Join(parts, ",")
		}

		account := sr.Statement.IBAN
		if account == "" {
			account = sr.Statement.AccountIdentifier
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", account, len(sr.Statement.Transactions), company, review)
		for _, warn := range sr.Statement.Warnings {
			fmt.Fprintf(tw, "  warning: %s\t%s\t\t\n", warn.Kind, warn.Message)
		}
	}
	return tw.Flush()
}
