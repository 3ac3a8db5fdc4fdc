// Package report builds the review report of an import: one entry per
// statement with its company resolution and what needs a human look.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"

	"gopkg.in/yaml.v3"
)

// Report summarizes an import for reviewers.
type Report struct {
	GeneratedAt  time.Time         `json:"generatedAt" yaml:"generated_at"`
	Statements   []StatementReport `json:"statements" yaml:"statements"`
	Skipped      []SkippedFile     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	NeedsReview  bool              `json:"needsReview" yaml:"needs_review"`
	Transactions int               `json:"transactions" yaml:"transactions"`
}

// StatementReport is the review entry of one statement.
type StatementReport struct {
	Account       string                         `json:"account" yaml:"account"`
	Format        models.Format                  `json:"format" yaml:"format"`
	From          string                         `json:"from,omitempty" yaml:"from,omitempty"`
	To            string                         `json:"to,omitempty" yaml:"to,omitempty"`
	Resolution    models.ResolutionStatus        `json:"resolution" yaml:"resolution"`
	CompanyID     string                         `json:"companyId,omitempty" yaml:"company_id,omitempty"`
	Candidates    []string                       `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Transactions  int                            `json:"transactions" yaml:"transactions"`
	Uncategorized int                            `json:"uncategorized" yaml:"uncategorized"`
	ReviewReasons []pipeline.ReviewReason        `json:"reviewReasons,omitempty" yaml:"review_reasons,omitempty"`
	Warnings      []models.ReconciliationWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SkippedFile is a file of a batch that could not be ingested.
type SkippedFile struct {
	File  string `json:"file" yaml:"file"`
	Error string `json:"error" yaml:"error"`
}

// New builds a report from ingested statements. now is the generation time.
func New(statements []pipeline.StatementResult, now time.Time) *Report {
	r := &Report{GeneratedAt: now.UTC()}
	for _, sr := range statements {
		entry := statementReport(sr)
		r.Statements = append(r.Statements, entry)
		r.Transactions += entry.Transactions
		if len(entry.ReviewReasons) > 0 {
			r.NeedsReview = true
		}
	}
	return r
}

// AddSkipped records a file that was not ingested.
func (r *Report) AddSkipped(file string, err error) {
	r.Skipped = append(r.Skipped, SkippedFile{File: filepath.Base(file), Error: err.Error()})
	r.NeedsReview = true
}

func statementReport(sr pipeline.StatementResult) StatementReport {
	stmt := sr.Statement
	entry := StatementReport{
		Account:       stmt.AccountIdentifier,
		Format:        stmt.Format,
		Resolution:    sr.Resolution.Status,
		Transactions:  len(stmt.Transactions),
		Uncategorized: stmt.UncategorizedCount(),
		ReviewReasons: sr.ReviewReasons(),
		Warnings:      stmt.Warnings,
	}
	if stmt.IBAN != "" {
		entry.Account = stmt.IBAN
	}
	if !stmt.Period.Start.IsZero() {
		entry.From = stmt.Period.Start.Format("2006-01-02")
	}
	if !stmt.Period.End.IsZero() {
		entry.To = stmt.Period.End.Format("2006-01-02")
	}
	if c, ok := sr.Resolution.Company(); ok {
		entry.CompanyID = c.CompanyID
	} else {
		for _, c := range sr.Resolution.Candidates {
			entry.Candidates = append(entry.Candidates, c.CompanyID)
		}
	}
	return entry
}

// Generator renders reports.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logging.OrDefault(logger)}
}

// FormatForPath picks the report format from a file extension: yaml for
// .yaml and .yml, json otherwise.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Generate renders report as json or yaml.
func (g *Generator) Generate(report *Report, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal YAML report")
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}
