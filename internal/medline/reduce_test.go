package medline

import (
	"slices"
	"testing"

	"github.com/matsen/nbib/internal/csl"
)

func reduce(fields ...csl.Field) []csl.Field {
	return slices.Collect(ReduceNames(slices.Values(fields)))
}

func names(fields []csl.Field) []csl.Name {
	var out []csl.Name
	for _, f := range fields {
		if n, ok := f.(csl.Name); ok {
			out = append(out, n)
		}
	}
	return out
}

func TestReduceNames_FullThenAbbreviated(t *testing.T) {
	got := names(reduce(
		csl.NewName("author", "Smith, John"),
		csl.NewName("author", "Smith J"),
	))

	if len(got) != 1 {
		t.Fatalf("got %d names, want 1: %+v", len(got), got)
	}
	if got[0].Parts.FamilyString() != "Smith" || got[0].Parts.GivenString() != "John" {
		t.Errorf("kept %+v, want Smith, John", got[0].Parts)
	}
	if !got[0].Full {
		t.Error("kept name should be the full form")
	}
}

func TestReduceNames_TwoAuthors(t *testing.T) {
	got := names(reduce(
		csl.NewName("author", "Blachly, James S"),
		csl.NewName("author", "Blachly JS"),
		csl.NewName("author", "Gregory, Charles Thomas"),
		csl.NewName("author", "Gregory CT"),
	))

	if len(got) != 2 {
		t.Fatalf("got %d names, want 2", len(got))
	}
	if got[0].Parts.FamilyString() != "Blachly" || got[1].Parts.FamilyString() != "Gregory" {
		t.Errorf("names = %+v", got)
	}
}

func TestReduceNames_Ordering(t *testing.T) {
	got := reduce(
		csl.Ordinary{Key: "note", Value: "PMID: 1"},
		csl.NewName("author", "Smith, John"),
		csl.NewName("author", "Smith J"),
		csl.Ordinary{Key: "title", Value: "T"},
		csl.NewRawDate("issued", "2020"),
		csl.NewName("editor", "Doe, Jane"),
	)

	keys := make([]string, len(got))
	for i, f := range got {
		keys[i] = fieldKey(f)
	}
	// Non-name fields keep their order and come first; names follow.
	want := []string{"note", "title", "issued", "author", "editor"}
	if !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func fieldKey(f csl.Field) string {
	switch v := f.(type) {
	case csl.Ordinary:
		return v.Key
	case csl.Name:
		return v.Key
	case csl.Date:
		return v.Key
	}
	return ""
}

func TestReduceNames_KeepsDistinct(t *testing.T) {
	tests := []struct {
		name   string
		fields []csl.Field
		want   int
	}{
		{
			name: "different keys",
			fields: []csl.Field{
				csl.NewName("author", "Smith, John"),
				csl.NewName("editor", "Smith, John"),
			},
			want: 2,
		},
		{
			name: "not adjacent",
			fields: []csl.Field{
				csl.NewName("author", "Smith, John"),
				csl.Ordinary{Key: "title", Value: "T"},
				csl.NewName("author", "Smith J"),
			},
			want: 2,
		},
		{
			name: "different family",
			fields: []csl.Field{
				csl.NewName("author", "Smith, John"),
				csl.NewName("author", "Jones, Ann"),
				csl.NewName("author", "Smith, Jane"),
			},
			want: 3,
		},
		{
			name:   "no names",
			fields: []csl.Field{csl.Ordinary{Key: "title", Value: "T"}},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(reduce(tt.fields...)); len(got) != tt.want {
				t.Errorf("got %d names, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReduceNames_Empty(t *testing.T) {
	if got := reduce(); len(got) != 0 {
		t.Errorf("ReduceNames(empty) = %v", got)
	}
}

func TestReduceNames_EarlyStop(t *testing.T) {
	fields := []csl.Field{
		csl.Ordinary{Key: "note", Value: "a"},
		csl.Ordinary{Key: "title", Value: "b"},
		csl.NewName("author", "Smith, John"),
	}
	n := 0
	for range ReduceNames(slices.Values(fields)) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("loop ran %d times, want 1", n)
	}
}
