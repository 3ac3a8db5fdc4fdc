package categorizer

import (
	"errors"
	"testing"

	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rules []models.ClassificationRule
	err   error
}

func (s stubSource) LoadRules() ([]models.ClassificationRule, error) {
	return s.rules, s.err
}

func TestClassifier_ClassifyStatement(t *testing.T) {
	mockLog := logging.NewMockLogger()
	c := NewDefaultClassifier(mockLog)

	stmt := &models.BankStatement{
		AccountIdentifier: "ES9121000418450200051332",
		Transactions: []models.Transaction{
			debit("COMISION MANTENIMIENTO"),
			credit("ALQUILER ENERO"),
			debit("COMPRA TPV"),
		},
	}

	uncategorized := c.ClassifyStatement(stmt)

	assert.Equal(t, 1, uncategorized)
	assert.Equal(t, 1, stmt.UncategorizedCount())
	assert.Equal(t, models.CategoryBankFee, stmt.Transactions[0].Category)
	assert.Equal(t, models.CategoryRentIncome, stmt.Transactions[1].Category)
	assert.Equal(t, models.CategoryUncategorized, stmt.Transactions[2].Category)
	assert.True(t, mockLog.HasEntry("INFO", "Classified statement transactions"))
	assert.Len(t, mockLog.GetEntriesByLevel("DEBUG"), 2)
}

func TestNewClassifierFromSource(t *testing.T) {
	t.Run("custom rules", func(t *testing.T) {
		c, err := NewClassifierFromSource(stubSource{rules: []models.ClassificationRule{
			{Pattern: "LIMPIEZA", Category: "cleaning"},
		}}, logging.NewMockLogger())
		require.NoError(t, err)
		assert.Equal(t, 1, c.Rules().Len())
		assert.Equal(t, models.Category("cleaning"), c.Classify(debit("LIMPIEZA PORTAL")))
	})

	t.Run("empty source uses defaults", func(t *testing.T) {
		c, err := NewClassifierFromSource(stubSource{}, logging.NewMockLogger())
		require.NoError(t, err)
		assert.Equal(t, len(DefaultRules()), c.Rules().Len())
	})

	t.Run("load failure", func(t *testing.T) {
		_, err := NewClassifierFromSource(stubSource{err: errors.New("boom")}, logging.NewMockLogger())
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("invalid rules", func(t *testing.T) {
		_, err := NewClassifierFromSource(stubSource{rules: []models.ClassificationRule{
			{Pattern: "(", Regex: true, Category: models.CategoryBankFee},
		}}, logging.NewMockLogger())
		assert.Error(t, err)
	})
}
