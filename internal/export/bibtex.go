// Package export renders CSL items in other bibliography formats.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/nbib/internal/csl"
)

// ToBibTeX converts an item to BibTeX, keyed by the item ID.
func ToBibTeX(item csl.Item) string {
	entryType := determineEntryType(item)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, item.ID))

	// Authors
	if authors := item.NamesFor("author"); len(authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(authors)))
	}
	if editors := item.NamesFor("editor"); len(editors) > 0 {
		b.WriteString(fmt.Sprintf("  editor = {%s},\n", formatAuthors(editors)))
	}

	// Title
	if title := item.Title(); title != "" {
		b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(title)))
	}

	// Venue
	if venue, ok := item.Value("container-title"); ok {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(venue)))
	}

	// Year and month come from the raw MEDLINE date, e.g. "2019 Mar 14"
	if issued, ok := item.Date("issued"); ok {
		year, month := splitRawDate(issued.RawString())
		if year != "" {
			b.WriteString(fmt.Sprintf("  year = {%s},\n", year))
		}
		if month != "" {
			b.WriteString(fmt.Sprintf("  month = %s,\n", month))
		}
	}

	for _, f := range []struct{ key, field string }{
		{"volume", "volume"},
		{"issue", "number"},
		{"page", "pages"},
		{"DOI", "doi"},
	} {
		if v, ok := item.Value(f.key); ok {
			switch f.field {
			case "pages":
				v = escapeLatex(strings.Replace(v, "-", "--", 1))
			case "doi":
			default:
				v = escapeLatex(v)
			}
			b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.field, v))
		}
	}

	// Abstract (optional, if present)
	if abstract, ok := item.Value("abstract"); ok {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(abstract)))
	}

	if notes := item.Values(csl.NoteKey); len(notes) > 0 {
		b.WriteString(fmt.Sprintf("  note = {%s},\n", escapeLatex(strings.Join(notes, "; "))))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple items to BibTeX format.
func ToBibTeXList(items []csl.Item) string {
	var entries []string
	for _, item := range items {
		entries = append(entries, ToBibTeX(item))
	}
	return strings.Join(entries, "\n")
}

// determineEntryType returns the BibTeX entry type for an item.
func determineEntryType(item csl.Item) string {
	venue, _ := item.Value("container-title")
	venue = strings.ToLower(venue)

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	if t, ok := item.Value("type"); ok && t != "article-journal" {
		return "misc"
	}

	// Default to article
	return "article"
}

var (
	yearRegex  = regexp.MustCompile(`^\d{4}`)
	monthNames = map[string]string{
		"jan": "jan", "feb": "feb", "mar": "mar", "apr": "apr",
		"may": "may", "jun": "jun", "jul": "jul", "aug": "aug",
		"sep": "sep", "oct": "oct", "nov": "nov", "dec": "dec",
	}
)

// splitRawDate pulls the year and a BibTeX month macro out of a MEDLINE date.
// Seasons and ranges ("2019 Spring", "2019 Mar-Apr") keep only what parses.
func splitRawDate(raw string) (year, month string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ""
	}
	year = yearRegex.FindString(fields[0])
	if len(fields) > 1 && len(fields[1]) >= 3 {
		month = monthNames[strings.ToLower(fields[1][:3])]
	}
	return year, month
}

// formatAuthors formats names in BibTeX style: "Family, Given and Family, Given"
func formatAuthors(names []csl.NameParts) string {
	var formatted []string
	for _, n := range names {
		switch {
		case n.Literal != nil:
			formatted = append(formatted, "{"+*n.Literal+"}")
		case n.Given != nil:
			formatted = append(formatted, fmt.Sprintf("%s, %s", n.FamilyString(), *n.Given))
		default:
			formatted = append(formatted, n.FamilyString())
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
