package factory_test

import (
	"testing"

	"inmova/bank-import/internal/factory"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	parsers := factory.Parsers(factory.Options{}, logging.NewMockLogger())

	require.Len(t, parsers, 2)
	for format, p := range parsers {
		assert.Equal(t, format, p.Format())
	}
	assert.Contains(t, parsers, models.FormatNorma43)
	assert.Contains(t, parsers, models.FormatCAMT053)
	assert.NotContains(t, parsers, models.FormatUnknown)
}
