package detector

import (
	"errors"
	"strings"
	"testing"

	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pad(s string) string {
	return s + strings.Repeat(" ", Norma43LineWidth-len([]rune(s)))
}

func norma43Sample() string {
	return strings.Join([]string{
		pad("11012802500100083954240101240131200000000100000978300INMOBILIARIA EJEMPLO SL"),
		pad("2201002401152401150417010000000000500000000000000000000000000000"),
		pad("2301COMISION MANTENIMIENTO"),
		pad("3301280250010008395400001000000000050000000000000000000000200000000009500009780"),
		pad("88999999999999999999000004"),
	}, "\r\n") + "\r\n"
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Format
	}{
		{
			name: "camt with xml prolog",
			text: `<?xml version="1.0" encoding="UTF-8"?><Document><BkToCstmrStmt/></Document>`,
			want: models.FormatCAMT053,
		},
		{
			name: "camt with leading whitespace",
			text: "\n\n  <?xml version=\"1.0\"?><Document/>",
			want: models.FormatCAMT053,
		},
		{
			name: "camt without prolog",
			text: `<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02"><BkToCstmrStmt></BkToCstmrStmt></Document>`,
			want: models.FormatCAMT053,
		},
		{
			name: "norma 43",
			text: norma43Sample(),
			want: models.FormatNorma43,
		},
		{
			name: "norma 43 with content after end of file",
			text: norma43Sample() + "exported by online banking\r\n" + strings.Repeat("X", 120),
			want: models.FormatNorma43,
		},
		{
			name: "norma 43 with blank lines",
			text: "\n" + strings.ReplaceAll(norma43Sample(), "\r\n", "\n\n"),
			want: models.FormatNorma43,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_Unrecognized(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantReason string
	}{
		{name: "empty", text: "", wantReason: "empty file"},
		{name: "whitespace only", text: " \r\n\t \n", wantReason: "empty file"},
		{name: "csv export", text: "fecha;concepto;importe\n01/01/2024;RECIBO;-50,00\n", wantReason: "unrecognized format"},
		{name: "short norma 43 line", text: "11012802500100083954\n", wantReason: "unrecognized format"},
		{name: "unknown record code", text: pad("99ABC"), wantReason: "unrecognized format"},
		{name: "one bad line among good ones", text: norma43Sample() + "not a record\n", wantReason: "unrecognized format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.text)
			assert.Equal(t, models.FormatUnknown, got)

			var formatErr *parsererror.UnrecognizedFormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, tt.wantReason, formatErr.Reason)
			assert.Equal(t, parsererror.DefaultFormatHint, formatErr.Hint)
		})
	}
}

func TestDetector_AllowShortLines(t *testing.T) {
	text := "11012802500100083954240101240131200000000100000978300\n88999999999999999999000002\n"

	_, err := Default().Detect(text)
	assert.Error(t, err)

	d := Default()
	d.AllowShortLines = true
	got, err := d.Detect(text)
	require.NoError(t, err)
	assert.Equal(t, models.FormatNorma43, got)
}

func TestDetector_SniffBytes(t *testing.T) {
	text := strings.Repeat(" ", 100) + "<Document><BkToCstmrStmt/></Document>"

	d := Detector{SniffBytes: 50}
	_, err := d.Detect(text)
	assert.Error(t, err, "marker outside the sniff window")

	d.SniffBytes = 200
	got, err := d.Detect(text)
	require.NoError(t, err)
	assert.Equal(t, models.FormatCAMT053, got)
}

func TestDetect_Deterministic(t *testing.T) {
	text := norma43Sample()
	first, err1 := Detect(text)
	second, err2 := Detect(text)
	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "fecha;concepto", snippet("  fecha;concepto\r\nmore"))
	assert.Equal(t, strings.Repeat("x", 40)+"...", snippet(strings.Repeat("x", 60)))
}
