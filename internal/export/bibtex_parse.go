package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/nbib/internal/csl"
)

// BibTeXIndex records the citation keys and DOIs already present in a .bib
// file, so items exported into it are not written twice.
type BibTeXIndex struct {
	keys map[string]bool
	dois map[string]string // normalized DOI -> citation key
}

// NewBibTeXIndex creates an empty index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		keys: make(map[string]bool),
		dois: make(map[string]string),
	}
}

// Len returns the number of indexed entries.
func (idx *BibTeXIndex) Len() int {
	return len(idx.keys)
}

// HasItem reports whether item is already indexed. A matching DOI wins;
// otherwise the item ID is compared with the citation keys.
func (idx *BibTeXIndex) HasItem(item csl.Item) bool {
	if doi, ok := item.Value("DOI"); ok {
		if _, found := idx.dois[normalizeDOI(doi)]; found {
			return true
		}
	}
	return idx.keys[item.ID]
}

// Add indexes item under its ID and DOI.
func (idx *BibTeXIndex) Add(item csl.Item) {
	doi, _ := item.Value("DOI")
	idx.add(item.ID, doi)
}

func (idx *BibTeXIndex) add(key, doi string) {
	idx.keys[key] = true
	if doi = normalizeDOI(doi); doi != "" {
		idx.dois[doi] = key
	}
}

var (
	// @article{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{\s*([^,\s]+)\s*,`)
	// doi = {value} or doi = "value", on its own line
	doiFieldRegex = regexp.MustCompile(`(?im)^\s*doi\s*=\s*[{"]([^}"]+)[}"]`)
)

// LoadBibTeXIndex indexes the entries of the .bib file at path. A missing
// file yields an empty index.
func LoadBibTeXIndex(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("reading bib file: %w", err)
	}

	// Each entry runs from its @type{key, to the start of the next one.
	starts := entryStartRegex.FindAllSubmatchIndex(data, -1)
	for i, m := range starts {
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		var doi string
		if d := doiFieldRegex.FindSubmatch(data[m[1]:end]); d != nil {
			doi = string(d[1])
		}
		idx.add(string(data[m[2]:m[3]]), doi)
	}
	return idx, nil
}

var doiPrefixes = []string{"https://doi.org/", "http://doi.org/", "doi.org/", "doi:"}

// normalizeDOI lowercases a DOI and strips any resolver or "doi:" prefix.
func normalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range doiPrefixes {
		if rest, ok := strings.CutPrefix(doi, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return doi
}

// AppendEntries appends rendered BibTeX entries to the file at path,
// creating it if needed. No entries leaves the file untouched.
func AppendEntries(path string, entries []string) error {
	if len(entries) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening bib file: %w", err)
	}
	defer f.Close()

	// Entries start on a fresh line even if the file lacks a trailing newline.
	if _, err := f.WriteString("\n" + strings.Join(entries, "\n")); err != nil {
		return fmt.Errorf("writing bib file: %w", err)
	}
	return nil
}
