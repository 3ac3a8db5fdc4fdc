package textdecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		want    string
		wantEnc Encoding
	}{
		{
			name:    "plain utf-8",
			raw:     []byte("RECIBO AGUA CANAL ISABEL II"),
			want:    "RECIBO AGUA CANAL ISABEL II",
			wantEnc: UTF8,
		},
		{
			name:    "utf-8 with BOM",
			raw:     append([]byte{0xEF, 0xBB, 0xBF}, []byte("<?xml version=\"1.0\"?><Document/>")...),
			want:    "<?xml version=\"1.0\"?><Document/>",
			wantEnc: UTF8,
		},
		{
			name:    "latin-1 fallback",
			raw:     []byte{'C', 'O', 'M', 'I', 'S', 'I', 0xD3, 'N'},
			want:    "COMISIÓN",
			wantEnc: Latin1,
		},
		{
			name:    "utf-16le with BOM",
			raw:     []byte{0xFF, 0xFE, 'O', 0, 'K', 0},
			want:    "OK",
			wantEnc: UTF16LE,
		},
		{
			name:    "declared windows-1252",
			raw:     append([]byte(`<?xml version="1.0" encoding="windows-1252"?><Ustrd>`), 0x80, '5', '<', '/', 'U', 's', 't', 'r', 'd', '>'),
			want:    `<?xml version="1.0" encoding="windows-1252"?><Ustrd>€5</Ustrd>`,
			wantEnc: Encoding("windows-1252"),
		},
		{
			name:    "declared utf-8 but invalid bytes",
			raw:     []byte("<?xml version=\"1.0\" encoding=\"UTF-8\"?><a>\xF1</a>"),
			want:    "<?xml version=\"1.0\" encoding=\"UTF-8\"?><a>ñ</a>",
			wantEnc: Latin1,
		},
		{
			name:    "empty input",
			raw:     nil,
			want:    "",
			wantEnc: UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc := Decode(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantEnc, enc)
		})
	}
}
