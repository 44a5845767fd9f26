package csl

import "iter"

// ReservedIDKey is the CSL-JSON key holding the item identifier. Ordinary
// fields with this key are never emitted.
const ReservedIDKey = "id"

// Item is one CSL item. Fields of each kind are kept in arrival order in
// their own slot.
type Item struct {
	ID     string
	Fields []Ordinary
	Names  []Name
	Dates  []Date
}

// Assemble folds one citation block's fields into an Item and derives its
// identifier. Ignored fields are skipped.
func Assemble(fields iter.Seq[Field]) Item {
	var item Item
	for f := range fields {
		switch v := f.(type) {
		case Ordinary:
			item.Fields = append(item.Fields, v)
		case Name:
			item.Names = append(item.Names, v)
		case Date:
			item.Dates = append(item.Dates, v)
		case Ignored:
		}
	}
	item.ID = ContentID(item)
	return item
}

// Value returns the first ordinary field with key.
func (it Item) Value(key string) (string, bool) {
	for _, f := range it.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every ordinary value stored under key, in order.
func (it Item) Values(key string) []string {
	var vals []string
	for _, f := range it.Fields {
		if f.Key == key {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// NamesFor returns the name parts stored under key, in order.
func (it Item) NamesFor(key string) []NameParts {
	var names []NameParts
	for _, n := range it.Names {
		if n.Key == key {
			names = append(names, n.Parts)
		}
	}
	return names
}

// Date returns the first date field with key.
func (it Item) Date(key string) (DateParts, bool) {
	for _, d := range it.Dates {
		if d.Key == key {
			return d.Parts, true
		}
	}
	return DateParts{}, false
}

// Title returns the item title or "".
func (it Item) Title() string {
	v, _ := it.Value("title")
	return v
}
