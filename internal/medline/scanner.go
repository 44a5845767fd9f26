// Package medline converts MEDLINE/PubMed tagged records ("nbib" files)
// into CSL items.
//
// A record line looks like
//
//	TI  - Article title that may continue
//	      on indented lines.
//
// where the tag occupies the first four columns and column five holds the
// separator. Records are separated by blank lines.
package medline

import (
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	tagWidth      = 4
	separatorCol  = 4
	valueCol      = 6
	separator     = '-'
	minRecordLine = 7
)

// Merge joins continuation lines onto the tagged line they extend and yields
// one logical line per field occurrence. Every raw line is trimmed and the
// pieces of a multi-line field are joined with a single space.
//
// A line of four characters or fewer yields ErrMalformedLine and a
// continuation before any tagged line yields ErrInvalidState; either ends
// the sequence.
func Merge(lines iter.Seq[string]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var pending []string
		n := 0
		for line := range lines {
			n++
			if utf8.RuneCountInString(line) <= tagWidth {
				yield("", &LineError{Line: n, Text: line, Err: ErrMalformedLine})
				return
			}

			if hasSeparator(line) {
				if len(pending) > 0 {
					if !yield(strings.Join(pending, " "), nil) {
						return
					}
					pending = pending[:0]
				}
				pending = append(pending, strings.TrimSpace(line))
				continue
			}

			if len(pending) == 0 {
				yield("", &LineError{Line: n, Text: line, Err: ErrInvalidState})
				return
			}
			pending = append(pending, strings.TrimSpace(line))
		}

		if len(pending) > 0 {
			yield(strings.Join(pending, " "), nil)
		}
	}
}

// hasSeparator reports whether the fifth character of line is the tag
// separator.
func hasSeparator(line string) bool {
	r, ok := runeAt(line, separatorCol)
	return ok && r == separator
}

// runeAt returns the i-th character of s.
func runeAt(s string, i int) (rune, bool) {
	for _, r := range s {
		if i == 0 {
			return r, true
		}
		i--
	}
	return 0, false
}

// splitAt splits s before its i-th character.
func splitAt(s string, i int) (string, string) {
	for off := range s {
		if i == 0 {
			return s[:off], s[off:]
		}
		i--
	}
	return s, ""
}
