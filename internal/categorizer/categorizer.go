// Package categorizer assigns categories to parsed bank transactions using
// priority-ordered substring and regular-expression rules.
package categorizer

import (
	"fmt"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
)

// Classifier classifies the transactions of parsed statements. It holds only
// read-only state and is safe for concurrent use.
type Classifier struct {
	rules  *RuleSet
	logger logging.Logger
}

// NewClassifier creates a Classifier over rules. A nil logger falls back to
// the default.
func NewClassifier(rules *RuleSet, logger logging.Logger) *Classifier {
	return &Classifier{
		rules:  rules,
		logger: logging.OrDefault(logger),
	}
}

// NewDefaultClassifier creates a Classifier over DefaultRules.
func NewDefaultClassifier(logger logging.Logger) *Classifier {
	return NewClassifier(MustCompile(DefaultRules()), logger)
}

// NewClassifierFromSource loads and compiles rules from source. An empty
// source falls back to DefaultRules.
func NewClassifierFromSource(source RuleSource, logger logging.Logger) (*Classifier, error) {
	rules, err := source.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load classification rules: %w", err)
	}
	if len(rules) == 0 {
		logging.OrDefault(logger).Info("No classification rules configured, using built-in rules")
		rules = DefaultRules()
	}
	rs, err := Compile(rules)
	if err != nil {
		return nil, err
	}
	return NewClassifier(rs, logger), nil
}

// Rules returns the compiled rule set.
func (c *Classifier) Rules() *RuleSet {
	return c.rules
}

// Classify returns the category for a single transaction.
func (c *Classifier) Classify(tx models.Transaction) models.Category {
	rule, ok := c.rules.Match(tx)
	if !ok {
		return models.CategoryUncategorized
	}
	c.logger.Debug("Transaction categorized",
		logging.Field{Key: logging.FieldRule, Value: rule.Name},
		logging.Field{Key: logging.FieldCategory, Value: string(rule.Category)})
	return rule.Category
}

// ClassifyStatement sets the Category of every transaction in stmt and
// returns how many stayed uncategorized.
func (c *Classifier) ClassifyStatement(stmt *models.BankStatement) int {
	uncategorized := 0
	for i := range stmt.Transactions {
		stmt.Transactions[i].Category = c.Classify(stmt.Transactions[i])
		if stmt.Transactions[i].Category.IsUncategorized() {
			uncategorized++
		}
	}
	c.logger.Info("Classified statement transactions",
		logging.Field{Key: logging.FieldAccount, Value: stmt.AccountIdentifier},
		logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)},
		logging.Field{Key: "uncategorized", Value: uncategorized})
	return uncategorized
}
