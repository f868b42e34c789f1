// Package statement reads bank statement exports so outflows can be
// captured as expenditures.
package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/model"
)

// Line is one transaction on a bank statement. Amount is negative for
// money leaving the account.
type Line struct {
	Date        model.Date
	Description string
	Amount      decimal.Decimal
	Reference   string
	Type        string
}

// IsOutflow reports whether the line is a payment out of the account.
func (l Line) IsOutflow() bool {
	return l.Amount.IsNegative()
}

// Parser converts a bank CSV export into Lines.
type Parser interface {
	Parse(r io.Reader) ([]Line, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	return r
}

// SourceRefs returns one reference per line: the parser reference and the
// amount, with a "#n" suffix from the second repeat within the file on. The
// same statement always yields the same references.
func SourceRefs(lines []Line) []string {
	seen := make(map[string]int, len(lines))
	refs := make([]string, len(lines))
	for i, l := range lines {
		base := l.Reference + "/" + l.Amount.StringFixed(2)
		seen[base]++
		if n := seen[base]; n > 1 {
			refs[i] = fmt.Sprintf("%s#%d", base, n)
		} else {
			refs[i] = base
		}
	}
	return refs
}

// Outflows keeps the lines that paid money out, in statement order.
func Outflows(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.IsOutflow() {
			out = append(out, l)
		}
	}
	return out
}
