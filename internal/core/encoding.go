package core

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Latin1ToUTF8 converts ISO-8859-1 bytes to UTF-8. Bytes below 0x80 pass
// through unchanged; every other byte becomes the two-byte sequence for the
// code point of the same value.
func Latin1ToUTF8(b []byte) []byte {
	// Every byte is a valid ISO-8859-1 code point, so decoding cannot fail.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return out
}

// NewLatin1Reader wraps r so that reads return UTF-8 decoded from ISO-8859-1.
// A file that starts with the UTF-8 byte order mark was re-saved by an
// editor; it is passed through as UTF-8 with the mark dropped. Any other
// leading bytes, including FF FE, are Latin-1 text.
func NewLatin1Reader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
		return br
	}
	return transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
}

// NormalizeDecimal replaces every decimal comma with a period.
// It runs on every field regardless of column kind, so commas inside
// text values are rewritten as well.
func NormalizeDecimal(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}
