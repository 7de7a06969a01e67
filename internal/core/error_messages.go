package core

// error_messages.go maps technical errors to user-facing messages with codes
// that can be quoted to support.
//
// Codes are grouped by category:
//
//	DB001-DB099    database constraints and connectivity
//	VAL001-VAL099  rejected field values
//	FILE001-FILE099  import file problems (size, format)
//	IMP001-IMP099  import processing (no cards, limits, cancellation)
//	AUTH001-AUTH099  sign-in codes and sessions
//	NF001-NF099    missing decks and cards
//	RATE001        request throttling
//	ERR000         fallback, check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Refresh the page and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "The deck this card belongs to no longer exists",
			Action:  "Refresh your deck list",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum import size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum import size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV or XLSX file with at least one card",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a CSV or XLSX file to import",
			Code:    "FILE003",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The file is not a readable Excel workbook",
			Action:  "Save the file as .xlsx, or export it as CSV",
			Code:    "FILE004",
		},
	},
	{
		pattern: "workbook has no sheets",
		msg: UserMessage{
			Message: "The workbook has no worksheets",
			Action:  "Put your cards on the first worksheet",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported characters",
		msg: UserMessage{
			Message: "Some card text contains characters that cannot be stored",
			Action:  "Remove null characters (such as \\u0000 in JSON) and try again",
			Code:    "FILE006",
		},
	},

	// Import processing
	{
		pattern: "no importable cards",
		msg: UserMessage{
			Message: "No cards were found in the file",
			Action:  "Every card needs a front and a back, either as the first two columns or under front/back headers",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many cards",
		msg: UserMessage{
			Message: "The file has more cards than a single import allows",
			Action:  "Split the file and import it in parts",
			Code:    "IMP002",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "IMP005",
		},
	},

	// Auth
	{
		pattern: "invalid sign-in code",
		msg: UserMessage{
			Message: "That code is not correct",
			Action:  "Check the code in your email and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "sign-in code expired",
		msg: UserMessage{
			Message: "That code has expired",
			Action:  "Request a new sign-in code",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "too many sign-in attempts",
		msg: UserMessage{
			Message: "Too many incorrect codes were entered",
			Action:  "Request a new sign-in code",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "sign-in code not found",
		msg: UserMessage{
			Message: "No sign-in is pending for this email",
			Action:  "Request a new sign-in code",
			Code:    "AUTH004",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Sign in and try again",
			Code:    "AUTH005",
		},
	},
	{
		pattern: "unauthorized",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Sign in and try again",
			Code:    "AUTH005",
		},
	},

	// Not found
	{
		pattern: "deck not found",
		msg: UserMessage{
			Message: "Deck not found",
			Action:  "It may have been removed. Refresh your deck list",
			Code:    "NF001",
		},
	},
	{
		pattern: "card not found",
		msg: UserMessage{
			Message: "Card not found",
			Action:  "It may have been deleted. Refresh the deck",
			Code:    "NF002",
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

// defaultMessage is returned when no pattern matches. Support staff should
// check application logs for the original error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Validation errors carry their own field and reason; everything else is
// matched against the known patterns, falling back to ERR000.
//
//	msg := MapError(fmt.Errorf("import: %w", ErrNoCards))
//	// msg.Code == "IMP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return UserMessage{
			Message: fmt.Sprintf("The %s %s", ve.Field, ve.Reason),
			Action:  "Correct the value and try again",
			Code:    "VAL001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
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

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
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
