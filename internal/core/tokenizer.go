package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// Delimiter separates fields within a line. Quoting is not supported.
	Delimiter = ";"

	// MaxLineBytes caps the decoded length of a single line.
	MaxLineBytes = 1 << 20

	fieldCutset = " \t\r\n"
)

// ReadRows opens path and tokenizes it with ParseRows.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseRows(f)
}

// ParseRows decodes r from ISO-8859-1 and splits it into rows.
// Lines that produce no fields are dropped; lines of empty fields are kept.
func ParseRows(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(NewLatin1Reader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	scanner.Split(scanLF)

	var rows []Row
	line := 0
	for scanner.Scan() {
		line++
		if row := SplitLine(scanner.Text()); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}

	return rows, nil
}

// SplitLine splits one decoded line on the delimiter, trims each field and
// normalizes decimal commas. A delimiter at the very end of the line does not
// open another field, so "A;B;" yields two fields and "" yields none.
func SplitLine(line string) Row {
	parts := strings.Split(line, Delimiter)
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	row := make(Row, len(parts))
	for i, p := range parts {
		row[i] = NormalizeDecimal(strings.Trim(p, fieldCutset))
	}
	return row
}

// scanLF is bufio.ScanLines without the carriage return stripping, so a
// line holding only "\r" still counts as one (empty) field.
func scanLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
