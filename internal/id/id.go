// Package id formats and parses the identifiers users see.
package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// EntryNumberPrefix starts every journal entry number.
const EntryNumberPrefix = "JE-"

// New returns a random record identifier.
func New() string {
	return uuid.NewString()
}

// FormatEntryNumber returns an entry number like "JE-0001". Sequences past
// 9999 keep growing in width.
func FormatEntryNumber(seq int64) string {
	return fmt.Sprintf("%s%04d", EntryNumberPrefix, seq)
}

// ParseEntryNumber parses "JE-0001" into its sequence.
func ParseEntryNumber(s string) (int64, error) {
	digits, ok := strings.CutPrefix(s, EntryNumberPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid entry number format: %q", s)
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in entry number %q: %w", s, err)
	}
	if seq <= 0 {
		return 0, fmt.Errorf("invalid sequence in entry number %q: must be positive", s)
	}
	return seq, nil
}

// Valid reports whether s looks like an identifier produced by New.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
