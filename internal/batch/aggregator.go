// Package batch ingests a directory of statement files and groups the
// resulting statements by account.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"
)

// FileResult is the outcome of one file. Exactly one of Result and Err is set.
type FileResult struct {
	File   string
	Result *pipeline.Result
	Err    error
}

// AccountGroup holds every statement of one account across the batch,
// ordered by period start.
type AccountGroup struct {
	Account    string
	Period     models.Period
	Statements []pipeline.StatementResult
	Duplicates int
}

// Summary is the outcome of a batch.
type Summary struct {
	Files    []FileResult
	Accounts []AccountGroup
}

// Failed returns the files that could not be ingested.
func (s *Summary) Failed() []FileResult {
	var failed []FileResult
	for _, f := range s.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Statements returns every statement of the batch in account order.
func (s *Summary) Statements() []pipeline.StatementResult {
	var all []pipeline.StatementResult
	for _, g := range s.Accounts {
		all = append(all, g.Statements...)
	}
	return all
}

// Aggregator runs every file of a directory through a pipeline.
type Aggregator struct {
	pipeline *pipeline.Pipeline
	logger   logging.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(p *pipeline.Pipeline, logger logging.Logger) *Aggregator {
	return &Aggregator{
		pipeline: p,
		logger:   logging.OrDefault(logger),
	}
}

// ListFiles returns the regular, non-hidden files directly under dir, sorted
// by name. Format is decided by content, so extensions are not filtered.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IngestDir ingests every file of dir. A file that fails is recorded in the
// summary and the batch continues; only an unreadable directory is an error.
func (a *Aggregator) IngestDir(ctx context.Context, dir string, opts pipeline.IngestOptions) (*Summary, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var statements []pipeline.StatementResult
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr := a.ingestFile(file, opts)
		summary.Files = append(summary.Files, fr)
		if fr.Result != nil {
			statements = append(statements, fr.Result.Statements...)
		}
	}

	summary.Accounts = a.groupByAccount(statements)

	a.logger.Info("Ingested directory",
		logging.Field{Key: logging.FieldFile, Value: dir},
		logging.Field{Key: "files", Value: len(files)},
		logging.Field{Key: "failed", Value: len(summary.Failed())},
		logging.Field{Key: "accounts", Value: len(summary.Accounts)})

	return summary, nil
}

func (a *Aggregator) ingestFile(file string, opts pipeline.IngestOptions) FileResult {
	raw, err := os.ReadFile(file)
	if err != nil {
		return FileResult{File: file, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	result, err := a.pipeline.Ingest(raw, opts)
	if err != nil {
		a.logger.WithError(err).Warn("Skipping file",
			logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)})
		return FileResult{File: file, Err: err}
	}
	a.logger.Debug("Ingested file",
		logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)},
		logging.Field{Key: logging.FieldFormat, Value: string(result.Format)},
		logging.Field{Key: logging.FieldStatements, Value: len(result.Statements)})
	return FileResult{File: file, Result: result}
}

// AccountKey identifies the account of a statement, preferring the IBAN.
func AccountKey(stmt models.BankStatement) string {
	if stmt.IBAN != "" {
		return stmt.IBAN
	}
	return stmt.AccountIdentifier
}

func (a *Aggregator) groupByAccount(statements []pipeline.StatementResult) []AccountGroup {
	byAccount := make(map[string]*AccountGroup)
	var order []string
	for _, sr := range statements {
		key := AccountKey(sr.Statement)
		g, ok := byAccount[key]
		if !ok {
			g = &AccountGroup{Account: key}
			byAccount[key] = g
			order = append(order, key)
		}
		g.Statements = append(g.Statements, sr)
		g.Period = MergePeriods(g.Period, sr.Statement.Period)
	}

	sort.Strings(order)
	groups := make([]AccountGroup, 0, len(order))
	for _, key := range order {
		g := byAccount[key]
		sort.SliceStable(g.Statements, func(i, j int) bool {
			return g.Statements[i].Statement.Period.Start.Before(g.Statements[j].Statement.Period.Start)
		})
		a.checkOverlaps(g)
		g.Duplicates = a.countDuplicates(g)
		groups = append(groups, *g)
	}
	return groups
}

// MergePeriods returns the smallest period covering both.
func MergePeriods(p, other models.Period) models.Period {
	out := p
	if out.Start.IsZero() || (!other.Start.IsZero() && other.Start.Before(out.Start)) {
		out.Start = other.Start
	}
	if out.End.IsZero() || (!other.End.IsZero() && other.End.After(out.End)) {
		out.End = other.End
	}
	return out
}

// checkOverlaps warns when consecutive statements of an account cover
// overlapping dates. Statements must be sorted by period start.
func (a *Aggregator) checkOverlaps(g *AccountGroup) {
	for i := 1; i < len(g.Statements); i++ {
		prev := g.Statements[i-1].Statement.Period
		cur := g.Statements[i].Statement.Period
		if prev.End.IsZero() || cur.Start.IsZero() || cur.Start.After(prev.End) {
			continue
		}
		a.logger.Warn("Statements overlap",
			logging.Field{Key: logging.FieldAccount, Value: g.Account},
			logging.Field{Key: "previous_end", Value: prev.End.Format("2006-01-02")},
			logging.Field{Key: "next_start", Value: cur.Start.Format("2006-01-02")})
	}
}

// countDuplicates counts transactions appearing more than once in the
// account. All of them are kept; duplicates are only reported.
func (a *Aggregator) countDuplicates(g *AccountGroup) int {
	seen := make(map[string]bool)
	duplicates := 0
	for _, sr := range g.Statements {
		for _, tx := range sr.Statement.Transactions {
			key := duplicateKey(tx)
			if !seen[key] {
				seen[key] = true
				continue
			}
			duplicates++
			a.logger.Debug("Potential duplicate transaction",
				logging.Field{Key: logging.FieldAccount, Value: g.Account},
				logging.Field{Key: "date", Value: tx.Date.Format("2006-01-02")},
				logging.Field{Key: "amount", Value: tx.SignedAmount().String()})
		}
	}
	if duplicates > 0 {
		a.logger.Warn("Found potential duplicate transactions",
			logging.Field{Key: logging.FieldAccount, Value: g.Account},
			logging.Field{Key: logging.FieldCount, Value: duplicates})
	}
	return duplicates
}

func duplicateKey(tx models.Transaction) string {
	return strings.Join([]string{
		tx.Date.Format("2006-01-02"),
		tx.SignedAmount().String(),
		tx.Currency,
		strings.ToLower(strings.TrimSpace(tx.Description)),
		tx.Reference,
	}, "|")
}
