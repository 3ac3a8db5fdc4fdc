// Package pipeline runs an uploaded statement through decoding, format
// detection, parsing, classification and company resolution.
package pipeline

import (
	"fmt"

	"inmova/bank-import/internal/categorizer"
	"inmova/bank-import/internal/detector"
	"inmova/bank-import/internal/factory"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parser"
	"inmova/bank-import/internal/resolver"
	"inmova/bank-import/internal/textdecode"
)

// Config tunes detection and parsing.
type Config struct {
	Detector detector.Detector
	Parsers  factory.Options
}

// IngestOptions are the per-upload inputs.
type IngestOptions struct {
	// Companies is the tenant's company directory used for resolution.
	Companies []models.CompanyRecord
	// CompanyID is the company the uploader targeted, if any.
	CompanyID string
}

// Pipeline is synchronous and holds only read-only collaborators, so one
// instance can serve concurrent uploads.
type Pipeline struct {
	detector   detector.Detector
	parsers    map[models.Format]parser.StatementParser
	classifier *categorizer.Classifier
	logger     logging.Logger
}

// New creates a Pipeline. A nil classifier uses the built-in rules and a nil
// logger falls back to the default.
func New(cfg Config, classifier *categorizer.Classifier, logger logging.Logger) *Pipeline {
	logger = logging.OrDefault(logger)
	if classifier == nil {
		classifier = categorizer.NewDefaultClassifier(logger)
	}
	return &Pipeline{
		detector:   cfg.Detector,
		parsers:    factory.Parsers(cfg.Parsers, logger),
		classifier: classifier,
		logger:     logger,
	}
}

// Detect decodes raw and identifies its format without parsing it.
func (p *Pipeline) Detect(raw []byte) (models.Format, textdecode.Encoding, error) {
	text, encoding := textdecode.Decode(raw)
	format, err := p.detector.Detect(text)
	return format, encoding, err
}

// Ingest parses raw into classified statements and resolves the company of
// each. Unrecognized formats and parse errors abort the whole file; every
// other anomaly is reported on the result.
func (p *Pipeline) Ingest(raw []byte, opts IngestOptions) (*Result, error) {
	text, encoding := textdecode.Decode(raw)
	logger := p.logger.WithField(logging.FieldEncoding, string(encoding))

	format, err := p.detector.Detect(text)
	if err != nil {
		logger.WithError(err).Warn("Rejected statement upload")
		return nil, err
	}
	logger = logger.WithField(logging.FieldFormat, string(format))

	prs, ok := p.parsers[format]
	if !ok {
		return nil, fmt.Errorf("no parser registered for format %s", format)
	}
	statements, err := prs.ParseStatements(text)
	if err != nil {
		logger.WithError(err).Warn("Statement parsing failed")
		return nil, err
	}

	result := &Result{
		Format:     format,
		Encoding:   encoding,
		Statements: make([]StatementResult, 0, len(statements)),
	}
	for i := range statements {
		stmt := statements[i]
		p.classifier.ClassifyStatement(&stmt)
		resolution := resolver.ResolveWithHint(stmt.Identifiers(), opts.Companies, opts.CompanyID)

		logger.Info("Statement ingested",
			logging.Field{Key: logging.FieldAccount, Value: stmt.AccountIdentifier},
			logging.Field{Key: logging.FieldResolution, Value: string(resolution.Status)},
			logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)})

		result.Statements = append(result.Statements, StatementResult{
			Statement:  stmt,
			Resolution: resolution,
			CompanyID:  opts.CompanyID,
		})
	}
	return result, nil
}
