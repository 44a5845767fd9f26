package medline

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/matsen/nbib/internal/csl"
)

// MapLine converts one merged "TAG - value" line into a CSL field.
//
// The line must be at least seven characters long with the separator in the
// fifth column, otherwise ErrMalformedRecord is returned. The tag is the
// first four columns right-trimmed and the value is everything from the
// seventh column on.
func MapLine(line string) (csl.Field, error) {
	if utf8.RuneCountInString(line) < minRecordLine || !hasSeparator(line) {
		return nil, ErrMalformedRecord
	}
	head, _ := splitAt(line, tagWidth)
	_, value := splitAt(line, valueCol)
	return MapTag(strings.TrimRight(head, " "), value)
}

// MapTag converts a tag and its value. Unknown tags yield csl.Ignored.
func MapTag(tag, value string) (csl.Field, error) {
	if tag == "" || utf8.RuneCountInString(tag) > tagWidth {
		return nil, fmt.Errorf("%w: tag %q must be 1-4 characters", ErrMalformedRecord, tag)
	}
	r, ok := tags[tag]
	if !ok {
		return csl.Ignored{}, nil
	}
	return r(value), nil
}

// MapFields maps each merged line and drops ignored fields. The first error,
// from the scanner or the mapper, is yielded and ends the sequence.
func MapFields(lines iter.Seq2[string, error]) iter.Seq2[csl.Field, error] {
	return func(yield func(csl.Field, error) bool) {
		n := 0
		for line, err := range lines {
			if err != nil {
				yield(nil, err)
				return
			}
			n++
			f, err := MapLine(line)
			if err != nil {
				yield(nil, &LineError{Line: n, Text: line, Err: err})
				return
			}
			if _, ignored := f.(csl.Ignored); ignored {
				continue
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}
