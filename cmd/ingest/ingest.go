// Package ingest handles the statement import command
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"inmova/bank-import/cmd/common"
	"inmova/bank-import/cmd/root"
	"inmova/bank-import/internal/batch"
	"inmova/bank-import/internal/export"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/pipeline"
	"inmova/bank-import/internal/report"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Save persists resolved statements when a database is configured.
	Save bool
	// ReportFile receives the review report, as YAML for .yaml/.yml and JSON otherwise.
	ReportFile string
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse, classify and resolve a statement file",
	Long: `Parse a Norma 43 or CAMT.053 file, classify every transaction and resolve
the owning company. Transactions are written as CSV, or XLSX when the output
file ends in .xlsx; without --output, CSV goes to stdout. When --input is a
directory, every file in it is ingested and statements are grouped by account.`,
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().BoolVar(&Save, "save", false, "Store statements resolved to one company in the database")
	Cmd.Flags().StringVar(&ReportFile, "report", "", "Write a review report (.json or .yaml)")
}

// Deps are the collaborators of Run.
type Deps struct {
	Pipeline  *pipeline.Pipeline
	Companies pipeline.CompanyDirectory
	Sink      pipeline.StatementSink
	Export    export.Options
	Logger    logging.Logger
}

// Options are the per-invocation inputs of Run.
type Options struct {
	Output    string
	CompanyID string
	Save      bool
	Report    string
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}

	deps := Deps{
		Pipeline:  c.GetPipeline(),
		Companies: c.GetCompanyDirectory(),
		Sink:      c.GetStatementSink(),
		Export:    c.GetConfig().ExportOptions(),
		Logger:    c.GetLogger(),
	}
	opts := Options{
		Output:    root.SharedFlags.Output,
		CompanyID: root.SharedFlags.Company,
		Save:      Save,
		Report:    ReportFile,
	}

	input := root.SharedFlags.Input
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return RunDir(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), deps, input, opts)
	}

	raw, err := common.ReadInput(input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), deps, raw, opts)
}

// Run ingests raw and writes the transactions and a summary. The summary
// goes to stderr when the transactions themselves go to stdout.
func Run(ctx context.Context, stdout, stderr io.Writer, deps Deps, raw []byte, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := common.Ingest(ctx, deps.Pipeline, deps.Companies, raw, opts.CompanyID)
	if err != nil {
		return err
	}

	summaryOut, err := deliver(ctx, stdout, stderr, deps, result.Statements, opts)
	if err != nil {
		return err
	}
	if opts.Report != "" {
		if err := writeReport(opts.Report, report.New(result.Statements, time.Now()), deps.Logger); err != nil {
			return err
		}
	}
	return common.PrintSummary(summaryOut, result)
}

// RunDir ingests every file of dir. Files that cannot be ingested are
// listed in the summary; the rest are exported together.
func RunDir(ctx context.Context, stdout, stderr io.Writer, deps Deps, dir string, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := deps.Companies.LoadCompanies(ctx)
	if err != nil {
		return fmt.Errorf("error loading companies: %w", err)
	}

	agg := batch.NewAggregator(deps.Pipeline, deps.Logger)
	summary, err := agg.IngestDir(ctx, dir, pipeline.IngestOptions{Companies: records, CompanyID: opts.CompanyID})
	if err != nil {
		return err
	}

	statements := summary.Statements()
	summaryOut, err := deliver(ctx, stdout, stderr, deps, statements, opts)
	if err != nil {
		return err
	}
	if opts.Report != "" {
		r := report.New(statements, time.Now())
		for _, f := range summary.Failed() {
			r.AddSkipped(f.File, f.Err)
		}
		if err := writeReport(opts.Report, r, deps.Logger); err != nil {
			return err
		}
	}
	return printBatchSummary(summaryOut, summary)
}

// deliver saves and exports statements and returns where the summary
// belongs.
func deliver(ctx context.Context, stdout, stderr io.Writer, deps Deps, statements []pipeline.StatementResult, opts Options) (io.Writer, error) {
	logger := logging.OrDefault(deps.Logger)

	if opts.Save {
		if err := save(ctx, deps.Sink, statements, logger); err != nil {
			return nil, err
		}
	}

	if opts.Output == "" {
		if err := export.WriteCSV(stdout, export.Rows(statements, deps.Export), deps.Export); err != nil {
			return nil, err
		}
		return stderr, nil
	}
	if err := export.WriteFile(opts.Output, statements, deps.Export, logger); err != nil {
		return nil, err
	}
	return stdout, nil
}

func save(ctx context.Context, sink pipeline.StatementSink, statements []pipeline.StatementResult, logger logging.Logger) error {
	if sink == nil {
		return fmt.Errorf("--save requires database.url to be configured")
	}
	for _, sr := range statements {
		if _, ok := sr.Resolution.Company(); !ok {
			logger.Warn("Statement not saved, company not resolved",
				logging.Field{Key: logging.FieldAccount, Value: sr.Statement.AccountIdentifier},
				logging.Field{Key: logging.FieldResolution, Value: string(sr.Resolution.Status)})
		}
	}

	resolved, _ := pipeline.Resolved(statements)
	if len(resolved) == 0 {
		return nil
	}
	importID := uuid.New()
	if _, err := sink.SaveImport(ctx, importID, resolved); err != nil {
		return fmt.Errorf("import %s not saved: %w", importID, err)
	}
	logger.Info("Saved statements",
		logging.Field{Key: logging.FieldImportID, Value: importID.String()},
		logging.Field{Key: logging.FieldStatements, Value: len(resolved)})
	return nil
}

func writeReport(path string, r *report.Report, logger logging.Logger) error {
	data, err := report.NewGenerator(logger).Generate(r, report.FormatForPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logging.OrDefault(logger).Info("Wrote review report",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldStatements, Value: len(r.Statements)})
	return nil
}

func printBatchSummary(w io.Writer, summary *batch.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tSTATEMENTS\tFROM\tTO\tDUPLICATES")
	for _, g := range summary.Accounts {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n", g.Account, len(g.Statements),
			g.Period.Start.Format("2006-01-02"), g.Period.End.Format("2006-01-02"), g.Duplicates)
	}
	for _, f := range summary.Failed() {
		fmt.Fprintf(tw, "skipped: %s\t%s\t\t\t\n", filepath.Base(f.File), common.DescribeError(f.Err))
	}
	return tw.Flush()
}
