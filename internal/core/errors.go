package core

import (
	"errors"
	"fmt"
)

// ErrImportInProgress is returned when an import is triggered while another
// session is still running.
var ErrImportInProgress = errors.New("an import is already in progress")

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("import session not found")

// ErrorKind classifies why an import failed.
type ErrorKind int

const (
	UnexpectedFailure ErrorKind = iota
	InputMissing
	SourceFileNotFound
	FileOpenFailure
	StoreOpenFailure
	SchemaCreationFailure
	RowInsertFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InputMissing:
		return "input missing"
	case SourceFileNotFound:
		return "source file not found"
	case FileOpenFailure:
		return "file open failure"
	case StoreOpenFailure:
		return "store open failure"
	case SchemaCreationFailure:
		return "schema creation failure"
	case RowInsertFailure:
		return "row insert failure"
	default:
		return "unexpected failure"
	}
}

// ImportError is the error returned by a failed import.
// Row is the zero-based index of the failing row, or -1 when the failure is
// not tied to a row.
type ImportError struct {
	Kind  ErrorKind
	Table string
	Row   int
	Err   error
}

func (e *ImportError) Error() string {
	msg := e.Kind.String()
	if e.Table != "" {
		msg += ": " + e.Table
		if e.Row >= 0 {
			msg += fmt.Sprintf(" row %d", e.Row)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// newImportError builds an ImportError that is not tied to a row.
func newImportError(kind ErrorKind, table string, err error) *ImportError {
	return &ImportError{Kind: kind, Table: table, Row: -1, Err: err}
}

// KindOf returns the ErrorKind carried by err, or UnexpectedFailure when err
// is not an ImportError.
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return UnexpectedFailure
}
