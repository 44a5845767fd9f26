// Package author provides author name parsing and matching for search queries.
package author

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/nbib/internal/csl"
)

// Query represents a parsed author search query.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if last, first, ok := strings.Cut(input, ","); ok && strings.TrimSpace(last) != "" {
		return Query{First: strings.TrimSpace(first), Last: strings.TrimSpace(last)}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Last: parts[0]}
	}

	// "Timothy C Yu" → first="Timothy C", last="Yu"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Query{First: first, Last: last}
}

// split returns the family and given parts of a CSL name. MEDLINE short
// forms ("Yu TC") carry no given name, so the family is split into the
// surname and its initials.
func split(n csl.NameParts) (last, first string, initialsOnly bool) {
	if n.Literal != nil {
		return *n.Literal, "", false
	}
	if n.Given != nil {
		return n.FamilyString(), *n.Given, false
	}
	family := n.FamilyString()
	if i := strings.LastIndexByte(family, ' '); i > 0 {
		return family[:i], family[i+1:], true
	}
	return family, "", false
}

// Matches checks if the query matches a given name.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//   - Against initials only, the first letters must agree
//
// This enables "Tim Yu" to match "Yu, Timothy C" and "Yu TC" while
// preventing "Yu" from matching "Yujia".
func (q Query) Matches(n csl.NameParts) bool {
	last, first, initialsOnly := split(n)
	if !strings.EqualFold(q.Last, last) {
		return false
	}

	if q.First == "" {
		return true
	}

	if initialsOnly {
		qr, _ := utf8.DecodeRuneInString(q.First)
		ir, _ := utf8.DecodeRuneInString(first)
		return unicode.ToUpper(qr) == unicode.ToUpper(ir)
	}

	return strings.HasPrefix(strings.ToLower(first), strings.ToLower(q.First))
}

// MatchesAny checks if the query matches any name in the list.
func (q Query) MatchesAny(names []csl.NameParts) bool {
	for _, n := range names {
		if q.Matches(n) {
			return true
		}
	}
	return false
}

// AllMatch checks if all queries match at least one name each.
// This implements AND logic for multiple author filters.
func AllMatch(queries []Query, names []csl.NameParts) bool {
	for _, q := range queries {
		if !q.MatchesAny(names) {
			return false
		}
	}
	return true
}
