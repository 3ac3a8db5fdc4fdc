package xmlutils

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// NewDecoder returns an XML decoder for text that is already UTF-8. The
// encoding declared in the prolog is ignored because decoding happened
// upstream.
func NewDecoder(text string) *xml.Decoder {
	d := xml.NewDecoder(strings.NewReader(text))
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return d
}

// ParseString parses UTF-8 XML text into an xmlpath node tree.
func ParseString(text string) (*xmlpath.Node, error) {
	root, err := xmlpath.ParseDecoder(NewDecoder(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// ExtractFromXML extracts values from an XML node using an XPath expression
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath: %w", err)
	}

	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, strings.TrimSpace(iter.Node().String()))
	}

	return values, nil
}

// FirstValue returns the first value matched by xpath, or "" when nothing
// matches or the expression is invalid.
func FirstValue(root *xmlpath.Node, xpath string) string {
	values, err := ExtractFromXML(root, xpath)
	if err != nil {
		return ""
	}
	return GetOrEmpty(values, 0)
}

// GetOrEmpty returns the value at the specified index in a slice, or an empty string if the index is out of bounds
func GetOrEmpty(slice []string, index int) string {
	if index >= 0 && index < len(slice) {
		return slice[index]
	}
	return ""
}

// CleanText collapses runs of whitespace, including the newlines and tabs
// that pretty-printed XML leaves inside text nodes, into single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
