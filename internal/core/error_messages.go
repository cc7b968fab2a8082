package core

// Error Codes Reference
//
// Failed runs print a one-line hint with a code after the raw error so an
// operator can tell at a glance which side of the pipe broke.
//
// # Network Errors (NET001-NET099)
//
//	NET001 - Host unreachable: the source host could not be resolved or reached
//	NET002 - Not found: the source returned 404, usually a month not yet published
//	NET003 - Bad status: the source returned another non-200 status
//	NET004 - Connection reset: the download was interrupted
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection failed: PostgreSQL could not be reached
//	DB002 - Authentication failed: user or password rejected
//	DB003 - Unknown database: the database named by --pg-db does not exist
//	DB004 - Permission denied: the user cannot create or write the table
//	DB005 - Invalid name: the target table name was rejected
//	DB000 - Other PostgreSQL error, SQLSTATE is in the raw error
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - Bad value: a cell could not be coerced to its column type
//	DATA002 - Rejected value: PostgreSQL rejected a value during COPY
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Empty file: the source has no header row
//	FILE002 - Bad compression: the .gz source is not valid gzip
//	FILE003 - Invalid CSV: malformed quoting or a row wider than the header
//	FILE004 - Invalid Parquet: the file could not be read as Parquet
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled: the run was interrupted
//	RUN002 - Timed out: a deadline expired
//	RUN003 - Invalid job: dataset, year or month missing or unsupported
//
// Typed errors are checked first; anything else falls back to case-insensitive
// substring patterns, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgCancelled = UserMessage{
		Message: "The run was cancelled",
		Action:  "Re-run the command; the table is replaced from scratch",
		Code:    "RUN001",
	}
	msgTimeout = UserMessage{
		Message: "The run timed out",
		Action:  "Raise HTTP_TIMEOUT or check the network",
		Code:    "RUN002",
	}
	msgInvalidJob = UserMessage{
		Message: "The requested dataset could not be resolved",
		Action:  "Check --dataset, --year and --month",
		Code:    "RUN003",
	}
	msgBadValue = UserMessage{
		Message: "A value in the source could not be converted",
		Action:  "Inspect the reported row and column in the source file",
		Code:    "DATA001",
	}
	msgBadParquet = UserMessage{
		Message: "The source could not be read as Parquet",
		Action:  "Check that the URL points at a .parquet file",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The source file is empty",
		Action:  "Check that the month has been published",
		Code:    "FILE001",
	}
)

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	// Database connectivity; pgconn wraps the dial error so this precedes NET.
	{
		pattern: "password authentication failed",
		msg: UserMessage{
			Message: "PostgreSQL rejected the credentials",
			Action:  "Check --pg-user and --pg-pass",
			Code:    "DB002",
		},
	},
	{
		pattern: "failed to connect",
		msg: UserMessage{
			Message: "Unable to connect to PostgreSQL",
			Action:  "Check --pg-host and --pg-port and that the server is running",
			Code:    "DB001",
		},
	},

	// Network
	{
		pattern: "status 404",
		msg: UserMessage{
			Message: "The source file was not found",
			Action:  "Check the dataset, year and month",
			Code:    "NET002",
		},
	},
	{
		pattern: "unexpected status",
		msg: UserMessage{
			Message: "The source server returned an error",
			Action:  "Try again later",
			Code:    "NET003",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to reach the source host",
			Action:  "Check DNS and the configured base URLs",
			Code:    "NET001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the source host",
			Action:  "Check the network and the configured base URLs",
			Code:    "NET001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The download was interrupted",
			Action:  "Re-run the command",
			Code:    "NET004",
		},
	},
	{
		pattern: "unexpected eof",
		msg: UserMessage{
			Message: "The download was interrupted",
			Action:  "Re-run the command",
			Code:    "NET004",
		},
	},

	// File
	{
		pattern: "gzip: invalid header",
		msg: UserMessage{
			Message: "The source is not valid gzip",
			Action:  "Check that the URL points at a .csv.gz file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The source is not valid CSV",
			Action:  "Check the reported row in the source file",
			Code:    "FILE003",
		},
	},

	// Data
	{
		pattern: "invalid integer",
		msg:     msgBadValue,
	},
	{
		pattern: "invalid number",
		msg:     msgBadValue,
	},
	{
		pattern: "invalid timestamp",
		msg:     msgBadValue,
	},

	// Run
	{
		pattern: "timeout",
		msg:     msgTimeout,
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "See the error above for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var cellErr *CellError
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, ErrEmptySource):
		return msgEmptyFile
	case errors.Is(err, ErrInvalidParquet):
		return msgBadParquet
	case errors.Is(err, ErrUnknownDataset), errors.Is(err, ErrInvalidJob):
		return msgInvalidJob
	case errors.As(err, &cellErr):
		return msgBadValue
	case errors.As(err, &pgErr):
		return mapPgError(pgErr)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// mapPgError classifies a server error by SQLSTATE.
func mapPgError(e *pgconn.PgError) UserMessage {
	switch {
	case e.Code == "3D000":
		return UserMessage{
			Message: "The database does not exist",
			Action:  "Create it or check --pg-db",
			Code:    "DB003",
		}
	case strings.HasPrefix(e.Code, "28"):
		return UserMessage{
			Message: "PostgreSQL rejected the credentials",
			Action:  "Check --pg-user and --pg-pass",
			Code:    "DB002",
		}
	case e.Code == "42501":
		return UserMessage{
			Message: "Permission denied",
			Action:  "Grant the user CREATE on the target schema",
			Code:    "DB004",
		}
	case e.Code == "42602", e.Code == "42622", e.Code == "3F000":
		return UserMessage{
			Message: "The target table name was rejected",
			Action:  "Check --target-table",
			Code:    "DB005",
		}
	case strings.HasPrefix(e.Code, "22"):
		return UserMessage{
			Message: "PostgreSQL rejected a value",
			Action:  "Check the column named in the error",
			Code:    "DATA002",
		}
	default:
		return UserMessage{
			Message: "PostgreSQL returned an error",
			Action:  fmt.Sprintf("Look up SQLSTATE %s", e.Code),
			Code:    "DB000",
		}
	}
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

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
