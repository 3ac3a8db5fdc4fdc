package detect

import (
	"bytes"
	"testing"

	"inmova/bank-import/internal/detector"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/parsererror"
	"inmova/bank-import/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Metadata(t *testing.T) {
	assert.Equal(t, "detect", Cmd.Use)
	assert.NotNil(t, Cmd.RunE)
}

func TestRun(t *testing.T) {
	p := pipeline.New(pipeline.Config{Detector: detector.Default()}, nil, logging.NewDiscardLogger())

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"camt", `<?xml version="1.0" encoding="UTF-8"?><Document><BkToCstmrStmt/></Document>`, "camt053\tutf-8\n", ""},
		{"empty", "", "", "empty file"},
		{"unknown", "hello world", "", "unrecognized format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Run(&out, p, []byte(tt.input))
			if tt.wantErr != "" {
				var formatErr *parsererror.UnrecognizedFormatError
				require.ErrorAs(t, err, &formatErr)
				assert.Equal(t, tt.wantErr, formatErr.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}
