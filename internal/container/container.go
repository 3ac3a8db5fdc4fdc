// Package container provides dependency injection for the bank-import
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"inmova/bank-import/internal/categorizer"
	"inmova/bank-import/internal/config"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/pgstore"
	"inmova/bank-import/internal/pipeline"
	"inmova/bank-import/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation; all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	store      *store.Store
	database   *pgstore.Store
	classifier *categorizer.Classifier
	pipeline   *pipeline.Pipeline
}

// Option customizes NewContainer.
type Option func(*options)

type options struct {
	logger logging.Logger
}

// WithLogger replaces the logger built from the log section.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewContainer creates and wires all application dependencies. When
// database.url is set, companies are read from and statements written to
// PostgreSQL; otherwise companies come from the YAML file and nothing is
// persisted.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = cfg.NewLogger()
	}

	fileStore := store.NewStore(cfg.Rules.File, cfg.Companies.File, logger)

	classifier, err := categorizer.NewClassifierFromSource(fileStore, logger)
	if err != nil {
		return nil, fmt.Errorf("error loading classification rules: %w", err)
	}

	var database *pgstore.Store
	if cfg.Database.URL != "" {
		database, err = pgstore.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
	}

	c := &Container{
		logger:     logger,
		config:     cfg,
		store:      fileStore,
		database:   database,
		classifier: classifier,
		pipeline:   pipeline.New(cfg.PipelineConfig(), classifier, logger),
	}

	logger.Info("Container initialized successfully",
		logging.Field{Key: "rules_count", Value: classifier.Rules().Len()},
		logging.Field{Key: "database_enabled", Value: database != nil})
	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the YAML store for rules and companies.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetClassifier returns the transaction classifier.
func (c *Container) GetClassifier() *categorizer.Classifier {
	return c.classifier
}

// GetPipeline returns the ingestion pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// GetCompanyDirectory returns the database when configured, the companies
// file otherwise.
func (c *Container) GetCompanyDirectory() pipeline.CompanyDirectory {
	if c.database != nil {
		return c.database
	}
	return c.store
}

// GetStatementSink returns the database, or nil when statements are not
// persisted.
func (c *Container) GetStatementSink() pipeline.StatementSink {
	if c.database != nil {
		return c.database
	}
	return nil
}

// Close releases the database connection, if any.
func (c *Container) Close() error {
	if c.database != nil {
		c.database.Close()
	}
	c.logger.Info("Container closed")
	return nil
}
