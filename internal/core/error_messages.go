package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// Technical errors are mapped to user-friendly messages with a code that
// users can quote to support staff.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file or raise STATS_MAX_FILE_SIZE
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid delimited file
//	          Action: Check quoting and the chosen delimiter
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File does not match the selected encoding
//	          Action: Pick the encoding the file was saved with
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was provided
//	          Action: Attach a file in the "file" form field
//	          Patterns: "no file provided"
//
//	FILE005 - File not found: The file does not exist
//	          Action: Check the path
//	          Patterns: "no such file"
//
//	FILE006 - Unknown encoding: The encoding name is not supported
//	          Action: Use an IANA name such as utf-8, iso-8859-1 or windows-1252
//	          Patterns: "unknown encoding"
//
//	FILE007 - Permission denied: The file cannot be read
//	          Action: Check file permissions
//	          Patterns: "permission denied"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid delimiter: Delimiter must be one printable character
//	         Patterns: "invalid delimiter"
//
//	VAL002 - Invalid input: Request body is not a JSON array
//	         Patterns: "invalid json input"
//
//	VAL003 - Integer out of range: An integer does not fit in 64 bits
//	         Patterns: "integer out of range"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many computations in progress
//	         Patterns: "too many concurrent computations"
//
//	RUN002 - Request cancelled
//	         Patterns: "context canceled"
//
//	RUN003 - Request timeout
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the server log for the original
// error, correlated by request ID.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid delimited file",
			Action:  "Check quoting and the chosen delimiter",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File does not match the selected encoding",
			Action:  "Pick the encoding the file was saved with",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Attach a file in the \"file\" form field",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check the path",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unknown encoding",
		msg: UserMessage{
			Message: "The encoding name is not supported",
			Action:  "Use an IANA name such as utf-8, iso-8859-1 or windows-1252",
			Code:    "FILE006",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The file cannot be read",
			Action:  "Check file permissions",
			Code:    "FILE007",
		},
	},

	// Validation errors
	{
		pattern: "invalid delimiter",
		msg: UserMessage{
			Message: "Delimiter must be one printable character",
			Action:  "Use a single character such as , ; | or tab",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid json input",
		msg: UserMessage{
			Message: "Request body is not a JSON array",
			Action:  "Send a JSON array such as [1, 2, 3]",
			Code:    "VAL002",
		},
	},
	{
		pattern: "integer out of range",
		msg: UserMessage{
			Message: "An integer does not fit in 64 bits",
			Action:  "Keep integers between -9223372036854775808 and 9223372036854775807",
			Code:    "VAL003",
		},
	},

	// Run errors; "context deadline exceeded" must precede "timeout"
	{
		pattern: "too many concurrent computations",
		msg: UserMessage{
			Message: "Too many computations in progress",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "RUN003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "RUN003",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first pattern match, or ERR000 when nothing matches.
//
// Example:
//
//	msg := MapError(err) // err from Compute with a bad encoding name
//	// msg.Code == "FILE006"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
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

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
