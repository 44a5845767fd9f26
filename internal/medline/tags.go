package medline

import (
	"strings"

	"github.com/matsen/nbib/internal/csl"
)

// rule converts the value of one MEDLINE tag into a CSL field.
type rule func(value string) csl.Field

// tags maps MEDLINE/PubMed tags to their CSL conversion. Tags missing from
// the table, and tags mapped to ignore, are dropped.
//
// Reference: https://www.nlm.nih.gov/bsd/mms/medlineelements.html
var tags = map[string]rule{
	"AB":   ordinary("abstract"),
	"PMID": prefixed("note", "PMID: "),
	"PMC":  prefixed("note", "PMCID: "),
	"TI":   ordinary("title"),
	"VI":   ordinary("volume"),
	"IP":   ordinary("issue"),
	"PG":   ordinary("page"),

	// MEDLINE dates look like "2019 Mar 14"; kept raw.
	"DP": date("issued"),

	"FAU": name("author"),
	"AU":  name("author"),
	"FED": name("editor"),
	"ED":  name("editor"),

	// Usually an ORCID. CSL names have no identifier slot, and emitting it
	// as a note would break the run of author names the reducer relies on.
	"AUID": ignore,

	// MEDLINE uses three-letter language codes.
	"LA": ordinary("language"),
	"SI": ordinary("note"),

	// Over 99% of MEDLINE citations carry one of Journal Article, Letter,
	// Editorial or News; only the first has a CSL type mapping.
	"PT": exact("Journal Article", "type", "article-journal"),

	"TA": ordinary("container-title-short"),
	"JT": ordinary("container-title"),

	"AID": suffixed("[doi]", "DOI"),
}

func ordinary(key string) rule {
	return func(value string) csl.Field {
		return csl.Ordinary{Key: key, Value: value}
	}
}

func prefixed(key, prefix string) rule {
	return func(value string) csl.Field {
		return csl.Ordinary{Key: key, Value: prefix + value}
	}
}

func name(key string) rule {
	return func(value string) csl.Field {
		return csl.NewName(key, value)
	}
}

func date(key string) rule {
	return func(value string) csl.Field {
		return csl.NewRawDate(key, value)
	}
}

func ignore(string) csl.Field { return csl.Ignored{} }

// exact emits key=out only when the value is exactly match.
func exact(match, key, out string) rule {
	return func(value string) csl.Field {
		if value != match {
			return csl.Ignored{}
		}
		return csl.Ordinary{Key: key, Value: out}
	}
}

// suffixed emits the value without its trailing suffix, and ignores values
// that lack it.
func suffixed(suffix, key string) rule {
	return func(value string) csl.Field {
		v, ok := strings.CutSuffix(value, suffix)
		if !ok {
			return csl.Ignored{}
		}
		return csl.Ordinary{Key: key, Value: strings.TrimSpace(v)}
	}
}
