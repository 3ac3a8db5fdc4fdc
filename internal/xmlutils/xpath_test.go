package xmlutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCamt = `<?xml version="1.0" encoding="ISO-8859-1"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02">
  <BkToCstmrStmt>
    <GrpHdr>
      <MsgId>MSG-2024-0001</MsgId>
      <CreDtTm>2024-02-01T08:00:00</CreDtTm>
    </GrpHdr>
    <Stmt>
      <Id>STMT-1</Id>
      <Acct><Id><IBAN>ES9121000418450200051332</IBAN></Id></Acct>
    </Stmt>
    <Stmt>
      <Id>STMT-2</Id>
      <Acct><Id><IBAN>ES5601280250590100083954</IBAN></Id></Acct>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

func TestGetOrEmpty(t *testing.T) {
	tests := []struct {
		name     string
		slice    []string
		index    int
		expected string
	}{
		{
			name:     "valid index returns value",
			slice:    []string{"a", "b", "c"},
			index:    1,
			expected: "b",
		},
		{
			name:     "index out of bounds returns empty",
			slice:    []string{"a", "b"},
			index:    5,
			expected: "",
		},
		{
			name:     "negative index returns empty",
			slice:    []string{"a"},
			index:    -1,
			expected: "",
		},
		{
			name:     "nil slice returns empty",
			slice:    nil,
			index:    0,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetOrEmpty(tt.slice, tt.index))
		})
	}
}

func TestParseString_IgnoresDeclaredEncoding(t *testing.T) {
	root, err := ParseString(sampleCamt)
	require.NoError(t, err)

	paths := DefaultCamt053XPaths()
	assert.Equal(t, "MSG-2024-0001", FirstValue(root, paths.GroupHeader.MessageID))
	assert.Equal(t, "2024-02-01T08:00:00", FirstValue(root, "/Document/BkToCstmrStmt/GrpHdr/CreDtTm"))

	ids, err := ExtractFromXML(root, "/Document/BkToCstmrStmt/Stmt/Id")
	require.NoError(t, err)
	assert.Equal(t, []string{"STMT-1", "STMT-2"}, ids)
}

func TestParseString_Malformed(t *testing.T) {
	_, err := ParseString("<Document><BkToCstmrStmt></Document>")
	assert.Error(t, err)
}

func TestExtractFromXML_InvalidExpression(t *testing.T) {
	root, err := ParseString(sampleCamt)
	require.NoError(t, err)

	_, err = ExtractFromXML(root, "///[")
	assert.Error(t, err)
	assert.Equal(t, "", FirstValue(root, "///["))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "RECIBO AGUA FEBRERO", CleanText("\n   RECIBO  AGUA\n\tFEBRERO  "))
	assert.Equal(t, "", CleanText(" \n "))
}
