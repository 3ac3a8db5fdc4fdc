package categorizer

import "inmova/bank-import/internal/models"

// RuleSource supplies classification rules, typically from a YAML file.
// This allows for dependency injection and easier testing.
type RuleSource interface {
	LoadRules() ([]models.ClassificationRule, error)
}
