package sanitize

import (
	"regexp"
	"strings"
)

// Generic messages returned in place of raw error text. Raw driver and
// network errors carry table names, hostnames, and stack frames that must
// never reach a user-visible surface.
const (
	msgDatabase = "A database error occurred. Please try again."
	msgNetwork  = "A network error occurred. Please try again."
	msgUnknown  = "An unknown error occurred."
)

// maxErrorLen caps how much of an unrecognized error message is shown.
const maxErrorLen = 150

// databaseRe matches backend/ORM/driver identifiers that mark an error as
// database-originated.
var databaseRe = regexp.MustCompile(`(?i)(mysql|mariadb|sqlstate|sql:|pgrst|postgres|supabase|prisma|sequelize|\bpg\s)`)

// networkRe matches transport-level failure signatures.
var networkRe = regexp.MustCompile(`(?i)(failed to fetch|network|fetch|err_|dial tcp|connection refused|connection reset|no such host|i/o timeout|broken pipe)`)

// ErrorMessage converts an arbitrary error into a user-safe string.
// Database and network errors collapse to generic categories; anything else
// is reduced to its first line and truncated. A nil error yields a fixed
// unknown-error message. The output never contains table names, hostnames,
// file paths, or stack frames.
func ErrorMessage(err error) string {
	if err == nil {
		return msgUnknown
	}

	msg := err.Error()
	if databaseRe.MatchString(msg) {
		return msgDatabase
	}
	if networkRe.MatchString(msg) {
		return msgNetwork
	}

	// Keep the first line only; anything after a newline is stack trace
	// or wrapped detail.
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return truncate(msg, maxErrorLen)
}

// truncate cuts s to at most n runes without splitting a multi-byte
// character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
