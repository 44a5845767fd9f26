package medline

import (
	"iter"
	"slices"

	"github.com/matsen/nbib/internal/csl"
	"github.com/matsen/nbib/internal/groupby"
)

// ReduceNames drops duplicate name fields for the same person.
//
// PubMed writes each author twice, "FAU - Smith, John" immediately followed
// by "AU  - Smith J". Fields are grouped into runs of name fields sharing a
// key, each run is grouped again by the first token of the family name, and
// only the first field of every inner group is kept. Only adjacent
// duplicates are recognized.
//
// Non-name fields are yielded first, in their original order, followed by
// the surviving names in order. The original interleaving of names with
// other fields is not preserved.
func ReduceNames(fields iter.Seq[csl.Field]) iter.Seq[csl.Field] {
	return func(yield func(csl.Field) bool) {
		var names []csl.Field
		for run := range groupby.By(fields, sameNameKey) {
			for f := range groupby.First(groupby.By(slices.Values(run), samePerson)) {
				if csl.IsName(f) {
					names = append(names, f)
					continue
				}
				if !yield(f) {
					return
				}
			}
		}
		for _, f := range names {
			if !yield(f) {
				return
			}
		}
	}
}

func sameNameKey(prev, next csl.Field) bool {
	a, ok := prev.(csl.Name)
	if !ok {
		return false
	}
	b, ok := next.(csl.Name)
	return ok && a.Key == b.Key
}

func samePerson(prev, next csl.Field) bool {
	a, ok := prev.(csl.Name)
	if !ok {
		return false
	}
	b, ok := next.(csl.Name)
	return ok && a.FamilyToken() == b.FamilyToken()
}
