package store

import (
	"context"

	"inmova/bank-import/internal/models"
)

// MockStore is an in-memory stand-in for Store in tests.
type MockStore struct {
	Rules     []models.ClassificationRule
	Companies []models.CompanyRecord

	LoadRulesError     error
	LoadCompaniesError error
	SaveRulesError     error
}

// LoadRules returns the mock rules.
func (m *MockStore) LoadRules() ([]models.ClassificationRule, error) {
	if m.LoadRulesError != nil {
		return nil, m.LoadRulesError
	}
	return m.Rules, nil
}

// SaveRules replaces the mock rules.
func (m *MockStore) SaveRules(rules []models.ClassificationRule) error {
	if m.SaveRulesError != nil {
		return m.SaveRulesError
	}
	m.Rules = append([]models.ClassificationRule(nil), rules...)
	return nil
}

// LoadCompanies returns a copy of the mock companies.
func (m *MockStore) LoadCompanies(_ context.Context) ([]models.CompanyRecord, error) {
	if m.LoadCompaniesError != nil {
		return nil, m.LoadCompaniesError
	}
	return append([]models.CompanyRecord(nil), m.Companies...), nil
}

// FindConfigFile returns a dummy path.
func (m *MockStore) FindConfigFile(filename string) (string, error) {
	return "/mock/path/" + filename, nil
}
