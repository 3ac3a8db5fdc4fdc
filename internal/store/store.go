// Package store loads classification rules and the company directory from
// YAML files.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"inmova/bank-import/internal/bankdata"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parsererror"
	"inmova/bank-import/internal/resolver"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRulesFile     = "rules.yaml"
	DefaultCompaniesFile = "companies.yaml"

	// configDirName is the per-user directory searched after the working
	// directory, under $HOME.
	configDirName = ".bank-import"
)

// Store reads and writes the YAML configuration files.
type Store struct {
	RulesFile     string
	CompaniesFile string

	logger logging.Logger
}

// NewStore creates a store. Empty file names fall back to the defaults.
func NewStore(rulesFile, companiesFile string, logger logging.Logger) *Store {
	if rulesFile == "" {
		rulesFile = DefaultRulesFile
	}
	if companiesFile == "" {
		companiesFile = DefaultCompaniesFile
	}
	return &Store{
		RulesFile:     rulesFile,
		CompaniesFile: companiesFile,
		logger:        logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *Store) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, configDirName, filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// readConfigFile returns the file content, or nil when the file does not
// exist anywhere.
func (s *Store) readConfigFile(filename string) ([]byte, string, error) {
	path, err := s.FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("error resolving %s: %w", filename, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, path, nil
}

// LoadRules loads classification rules. A missing file yields no rules, so
// callers fall back to the built-in set. Both a top-level "rules:" key and
// a bare list are accepted.
func (s *Store) LoadRules() ([]models.ClassificationRule, error) {
	data, path, err := s.readConfigFile(s.RulesFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		s.logger.Warn("Rules file not found, using built-in rules",
			logging.Field{Key: logging.FieldFile, Value: s.RulesFile})
		return nil, nil
	}

	var cfg models.RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err == nil && len(cfg.Rules) > 0 {
		s.logger.Debug("Loaded classification rules",
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: logging.FieldCount, Value: len(cfg.Rules)})
		return cfg.Rules, nil
	}

	var rules []models.ClassificationRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, &parsererror.ConfigError{Source: path, Reason: "cannot parse rules", Err: err}
	}
	s.logger.Debug("Loaded classification rules",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return rules, nil
}

// SaveRules writes rules to RulesFile, creating its directory if needed.
func (s *Store) SaveRules(rules []models.ClassificationRule) error {
	path := s.RulesFile
	if found, err := s.FindConfigFile(path); err == nil {
		path = found
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(models.RulesConfig{Rules: rules})
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing rules: %w", err)
	}

	s.logger.Debug("Saved classification rules",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return nil
}

// LoadCompanies loads the company directory. A missing file yields an empty
// directory, which leaves every statement unmatched.
func (s *Store) LoadCompanies(_ context.Context) ([]models.CompanyRecord, error) {
	data, path, err := s.readConfigFile(s.CompaniesFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		s.logger.Warn("Companies file not found",
			logging.Field{Key: logging.FieldFile, Value: s.CompaniesFile})
		return []models.CompanyRecord{}, nil
	}

	var cfg models.CompaniesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &parsererror.ConfigError{Source: path, Reason: "cannot parse companies", Err: err}
	}
	if err := validateCompanies(cfg.Companies); err != nil {
		return nil, &parsererror.ConfigError{Source: path, Reason: err.Error()}
	}

	s.logger.Debug("Loaded companies",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(cfg.Companies)})
	return cfg.Companies, nil
}

func validateCompanies(companies []models.CompanyRecord) error {
	seen := make(map[string]bool, len(companies))
	for i, c := range companies {
		if c.ID == "" {
			return fmt.Errorf("company %d has no id", i+1)
		}
		iban := resolver.Normalize(c.IBAN)
		if iban == "" {
			return fmt.Errorf("company %s has no iban", c.ID)
		}
		// CCC and legacy Norma 43 codes are all digits and carry no IBAN checksum
		if unicode.IsLetter(rune(iban[0])) && !bankdata.ValidIBAN(iban) {
			return fmt.Errorf("company %s has an invalid iban", c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate company id %s", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}
