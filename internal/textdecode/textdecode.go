// Package textdecode turns uploaded statement bytes into UTF-8 text before
// format detection. Spanish banks still export Norma 43 files in ISO-8859-1,
// while CAMT.053 documents declare their encoding in the XML prolog.
package textdecode

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the character set the input was decoded from.
type Encoding string

const (
	UTF8    Encoding = "utf-8"
	UTF16LE Encoding = "utf-16le"
	UTF16BE Encoding = "utf-16be"
	Latin1  Encoding = "iso-8859-1"
)

const prologWindow = 256

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	xmlEncodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*\sencoding\s*=\s*["']([A-Za-z0-9._:\-]+)["']`)
)

// Decode returns raw as UTF-8 text together with the encoding it was read
// from. It never fails: byte sequences that are not valid UTF-8 and carry no
// usable declaration are read as ISO-8859-1, which maps every byte.
func Decode(raw []byte) (string, Encoding) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		raw = raw[len(bomUTF8):]
		if utf8.Valid(raw) {
			return string(raw), UTF8
		}
	case bytes.HasPrefix(raw, bomUTF16LE):
		if text, ok := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw); ok {
			return text, UTF16LE
		}
	case bytes.HasPrefix(raw, bomUTF16BE):
		if text, ok := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw); ok {
			return text, UTF16BE
		}
	}

	if label := declaredEncoding(raw); label != "" {
		if text, enc, ok := decodeDeclared(raw, label); ok {
			return text, enc
		}
	}

	if utf8.Valid(raw) {
		return string(raw), UTF8
	}

	text, _ := decodeWith(charmap.ISO8859_1, raw)
	return text, Latin1
}

// declaredEncoding extracts the encoding label of an XML prolog, if any.
func declaredEncoding(raw []byte) string {
	window := raw
	if len(window) > prologWindow {
		window = window[:prologWindow]
	}
	m := xmlEncodingDecl.FindSubmatch(window)
	if m == nil {
		return ""
	}
	return strings.ToLower(string(m[1]))
}

func decodeDeclared(raw []byte, label string) (string, Encoding, bool) {
	if label == "utf-8" || label == "utf8" {
		if utf8.Valid(raw) {
			return string(raw), UTF8, true
		}
		return "", "", false
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", "", false
	}
	text, ok := decodeWith(enc, raw)
	if !ok {
		return "", "", false
	}
	return text, Encoding(name), true
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), true
}
