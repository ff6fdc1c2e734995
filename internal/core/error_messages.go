package core

// error_messages.go maps import failures to user-facing messages with codes
// for support reference.
//
// # Import Errors (IMP001-IMP099)
//
// One code per ErrorKind:
//
//	IMP001 - Input missing: no source folder was given
//	IMP002 - Source file not found: one of the three CSV exports is missing
//	IMP003 - File open failure: a CSV file could not be read
//	IMP004 - Store open failure: the destination could not be opened
//	IMP005 - Schema creation failure: tables could not be created
//	IMP006 - Row insert failure: a row was rejected and the table rolled back
//	IMP007 - Unexpected failure: anything else, including recovered panics
//
// # Database Errors (DB001-DB099)
//
// Destination errors behind IMP004-IMP006 are refined by PostgreSQL SQLSTATE
// or, for SQLite, by message pattern:
//
//	DB001 - Unique violation
//	DB002 - Foreign key violation
//	DB003 - Not null violation
//	DB004 - Type mismatch
//	DB005 - Database locked or busy
//	DB006 - Connection refused
//	DB007 - Read-only or unwritable destination
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid number in a numeric column (strict numeric mode)
//
// # Session Errors (SES001-SES099)
//
//	SES001 - An import is already running
//	SES002 - Session not found or expired
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application log for the original error.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var kindMessages = map[ErrorKind]UserMessage{
	InputMissing: {
		Message: "No source folder was given",
		Action:  "Choose the folder that holds Matlist.csv, Recipehead.csv and Recipeline.csv",
		Code:    "IMP001",
	},
	SourceFileNotFound: {
		Message: "Required CSV files not found in folder",
		Action:  "Check that the folder holds Matlist.csv, Recipehead.csv and Recipeline.csv",
		Code:    "IMP002",
	},
	FileOpenFailure: {
		Message: "A CSV file could not be read",
		Action:  "Check that the file is not locked by another program",
		Code:    "IMP003",
	},
	StoreOpenFailure: {
		Message: "The destination database could not be opened",
		Action:  "Check the database path and that its folder exists and is writable",
		Code:    "IMP004",
	},
	SchemaCreationFailure: {
		Message: "The destination tables could not be created",
		Action:  "Check that the destination is not an unrelated database",
		Code:    "IMP005",
	},
	RowInsertFailure: {
		Message: "A row was rejected; the table was rolled back",
		Action:  "Fix the reported row in the CSV export and import again",
		Code:    "IMP006",
	},
	UnexpectedFailure: {
		Message: "The import stopped unexpectedly",
		Action:  "Please try again or contact support",
		Code:    "IMP007",
	},
}

// sentinelMessages are matched with errors.Is before anything else.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrImportInProgress, UserMessage{
		Message: "An import is already running",
		Action:  "Wait for it to finish, then try again",
		Code:    "SES001",
	}},
	{ErrSessionNotFound, UserMessage{
		Message: "Import session not found",
		Action:  "The session may have expired. Start a new import",
		Code:    "SES002",
	}},
	{ErrInvalidNumeric, UserMessage{
		Message: "Invalid number in a numeric column",
		Action:  "Use digits with a decimal comma or point only",
		Code:    "VAL001",
	}},
}

// pgStateMessages maps PostgreSQL SQLSTATE codes.
var pgStateMessages = map[string]UserMessage{
	"23505": {Message: "A record with this key already exists", Action: "Check the key columns for duplicates", Code: "DB001"},
	"23503": {Message: "Referenced record does not exist", Action: "Ensure materials and recipe heads exist for every recipe line", Code: "DB002"},
	"23502": {Message: "A required column is empty", Action: "Fill the column or check its default", Code: "DB003"},
	"22P02": {Message: "A value does not match its column type", Action: "Check numeric columns for stray text", Code: "DB004"},
	"22003": {Message: "A number is out of range for its column", Action: "Check numeric columns for oversized values", Code: "DB004"},
	"25006": {Message: "The destination is read-only", Action: "Use a writable database", Code: "DB007"},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched case-insensitively with strings.Contains.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{"unique constraint failed", pgStateMessages["23505"]},
	{"foreign key constraint failed", pgStateMessages["23503"]},
	{"not null constraint failed", pgStateMessages["23502"]},
	{"datatype mismatch", pgStateMessages["22P02"]},
	{"database is locked", UserMessage{
		Message: "The database is busy",
		Action:  "Close other programs using the database and try again",
		Code:    "DB005",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB006",
	}},
	{"readonly database", pgStateMessages["25006"]},
	{"unable to open database file", UserMessage{
		Message: "The database file could not be opened",
		Action:  "Check that the destination folder exists and is writable",
		Code:    "DB007",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels win, then destination errors, then the import error kind.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := pgStateMessages[pgErr.Code]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var ie *ImportError
	if errors.As(err, &ie) {
		return kindMessages[ie.Kind]
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
