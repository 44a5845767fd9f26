package csl

// DateParts is the CSL date-variable object. Only Raw is filled today; the
// other members are kept for structured date parsing.
type DateParts struct {
	DateParts *string `json:"date-parts,omitempty"`
	Season    *string `json:"season,omitempty"`
	Circa     *string `json:"circa,omitempty"`
	Literal   *string `json:"literal,omitempty"`
	Raw       *string `json:"raw,omitempty"`
	EDTF      *string `json:"edtf,omitempty"`
}

// IsEmpty reports whether no part is set.
func (dp DateParts) IsEmpty() bool {
	return dp.DateParts == nil && dp.Season == nil && dp.Circa == nil &&
		dp.Literal == nil && dp.Raw == nil && dp.EDTF == nil
}

// NewRawDate builds a date field holding the unparsed value.
func NewRawDate(key, raw string) Date {
	return Date{Key: key, Parts: DateParts{Raw: ptr(raw)}}
}

// RawString returns the raw date or "".
func (dp DateParts) RawString() string {
	if dp.Raw == nil {
		return ""
	}
	return *dp.Raw
}
