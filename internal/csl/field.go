// Package csl defines the Citation Style Language item model produced by
// the MEDLINE converter and its CSL-JSON encoding.
//
// Reference: https://github.com/citation-style-language/schema/blob/master/schemas/input/csl-data.json
package csl

// Field is one converted tag/value. It is a closed union: the concrete type
// is always one of Ignored, Ordinary, Name or Date.
type Field interface {
	isField()
}

// Ignored marks a tag that is recognized as unsupported or not recognized at
// all. It carries no data and never reaches an Item.
type Ignored struct{}

// Ordinary is a flat CSL string variable such as "title" or "page".
type Ordinary struct {
	Key   string
	Value string
}

// Name is a CSL name variable entry such as one "author".
type Name struct {
	Key string

	// Full is set when the name came from a "family, given" form, in MEDLINE
	// the FAU and FED tags.
	Full bool

	Parts NameParts
}

// Date is a CSL date variable such as "issued".
type Date struct {
	Key   string
	Parts DateParts
}

func (Ignored) isField()  {}
func (Ordinary) isField() {}
func (Name) isField()     {}
func (Date) isField()     {}

// IsName reports whether f is a name field.
func IsName(f Field) bool {
	_, ok := f.(Name)
	return ok
}
