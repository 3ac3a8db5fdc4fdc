package classify

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inmova/bank-import/internal/categorizer"
	"inmova/bank-import/internal/detector"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"
	"inmova/bank-import/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Metadata(t *testing.T) {
	assert.Equal(t, "classify", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("write-default-rules"))
}

func TestRun(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "internal", "pipeline", "testdata", "rent_latin1.n43"))
	require.NoError(t, err)

	logger := logging.NewDiscardLogger()
	classifier := categorizer.NewDefaultClassifier(logger)
	p := pipeline.New(pipeline.Config{Detector: detector.Default()}, classifier, logger)

	var out bytes.Buffer
	require.NoError(t, Run(&out, p, classifier, raw))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "CATEGORY")
	assert.Contains(t, lines[1], "rent_income")
	assert.Contains(t, lines[1], "850.00")
	assert.Contains(t, lines[1], "rent")
	assert.Contains(t, lines[2], "uncategorized")
	assert.Contains(t, lines[2], "-12.34")
	assert.Contains(t, lines[2], "OPERACIÓN VARIA")
}

func TestRun_Rejected(t *testing.T) {
	p := pipeline.New(pipeline.Config{}, nil, logging.NewDiscardLogger())
	var out bytes.Buffer
	assert.Error(t, Run(&out, p, categorizer.NewDefaultClassifier(nil), []byte("")))
}

func TestWriteDefaults(t *testing.T) {
	m := &store.MockStore{}
	require.NoError(t, WriteDefaults(m))
	assert.Equal(t, categorizer.DefaultRules(), m.Rules)

	file := filepath.Join(t.TempDir(), "rules.yaml")
	s := store.NewStore(file, "", logging.NewDiscardLogger())
	require.NoError(t, WriteDefaults(s))
	loaded, err := s.LoadRules()
	require.NoError(t, err)
	assert.Len(t, loaded, len(categorizer.DefaultRules()))
	assert.Equal(t, models.CategoryBankFee, loaded[0].Category)
}
