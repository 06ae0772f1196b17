// Package sqlutil holds helpers for building MySQL statements around
// configured table names.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxIdentifierLength is MySQL's limit for table and column names.
const MaxIdentifierLength = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// QuoteIdentifier wraps name in backticks, doubling any backtick inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// IsValidIdentifier reports whether name is a plain identifier of letters,
// digits, and underscores no longer than MaxIdentifierLength.
func IsValidIdentifier(name string) bool {
	return len(name) <= MaxIdentifierLength && identifierPattern.MatchString(name)
}

// QuoteIdentifierSafe quotes name after checking it with IsValidIdentifier.
// Table names read from configuration go through here.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError reports a name rejected by QuoteIdentifierSafe.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier: %q (letters, digits and underscores only, at most %d characters)",
		e.Name, MaxIdentifierLength)
}
