package csl

import "strings"

// NameParts is the CSL name-variable object. Nil fields are absent and are
// omitted from JSON.
type NameParts struct {
	Family              *string `json:"family,omitempty"`
	Given               *string `json:"given,omitempty"`
	DroppingParticle    *string `json:"dropping-particle,omitempty"`
	NonDroppingParticle *string `json:"non-dropping-particle,omitempty"`
	Suffix              *string `json:"suffix,omitempty"`
	CommaSuffix         *string `json:"comma-suffix,omitempty"`
	StaticOrdering      *string `json:"static-ordering,omitempty"`
	Literal             *string `json:"literal,omitempty"`
	ParseNames          *string `json:"parse-names,omitempty"`
}

// IsEmpty reports whether no part is set.
func (np NameParts) IsEmpty() bool {
	return np.Family == nil && np.Given == nil &&
		np.DroppingParticle == nil && np.NonDroppingParticle == nil &&
		np.Suffix == nil && np.CommaSuffix == nil &&
		np.StaticOrdering == nil && np.Literal == nil && np.ParseNames == nil
}

// FamilyString returns the family name or "".
func (np NameParts) FamilyString() string {
	if np.Family == nil {
		return ""
	}
	return *np.Family
}

// GivenString returns the given name or "".
func (np NameParts) GivenString() string {
	if np.Given == nil {
		return ""
	}
	return *np.Given
}

// NewName builds a name field for key from a raw "family, given" value.
//
// With no comma the trimmed value is the family name. With exactly one comma
// the two sides become family and given and the name is marked Full. With
// more than one comma (for example a trailing ", Jr.") the whole trimmed
// value is kept as the family name; Ambiguous reports that case.
func NewName(key, raw string) Name {
	parts := strings.Split(raw, ",")
	n := Name{Key: key}
	switch len(parts) {
	case 2:
		n.Parts.Family = ptr(strings.TrimSpace(parts[0]))
		n.Parts.Given = ptr(strings.TrimSpace(parts[1]))
		n.Full = true
	default:
		n.Parts.Family = ptr(strings.TrimSpace(raw))
	}
	return n
}

// Ambiguous reports whether raw has more than one comma and so cannot be
// split into family and given.
func Ambiguous(raw string) bool {
	return strings.Count(raw, ",") > 1
}

// FamilyToken returns the first whitespace-delimited token of the family
// name, used to recognize the same person across FAU and AU forms.
func (n Name) FamilyToken() string {
	fields := strings.Fields(n.Parts.FamilyString())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func ptr(s string) *string { return &s }
