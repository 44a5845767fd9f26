package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/author"
	"github.com/matsen/nbib/internal/csl"
)

var (
	searchLimit   int
	searchField   string
	searchAuthors []string
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	searchCmd.Flags().StringVar(&searchField, "field", "", "Restrict the search to one field (author, title, journal)")
	searchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, `Require an author ("Yu", "Tim Yu", "Yu, Timothy"); repeatable`)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search items by keyword or author",
	Long: `Full-text search over titles, abstracts, authors and journals.

Author filters match the family name exactly and the given name by
prefix, so "Tim Yu" matches both "Yu, Timothy C" and "Yu TC".

Examples:
  nbib search leukemia
  nbib search --field title "gene expression"
  nbib search -a Blachly -a "Charles Gregory"
  nbib search ibrutinib --author Blachly --limit 10 --human`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" && len(searchAuthors) == 0 {
		exitWithError(ExitError, "a query or --author is required")
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	// Author filtering happens after retrieval, so fetch without a limit
	limit := searchLimit
	if len(searchAuthors) > 0 {
		limit = -1
	}

	var items []csl.Item
	var err error
	switch {
	case query == "":
		items, err = db.ListAll(0)
	case searchField != "":
		items, err = db.SearchField(searchField, query, limit)
	default:
		items, err = db.Search(query, limit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if len(searchAuthors) > 0 {
		items = filterByAuthors(items, parseAuthorQueries(searchAuthors), searchLimit)
	}

	if humanOutput {
		if len(items) == 0 {
			fmt.Println("No matching items")
			return nil
		}
		fmt.Printf("%d matching items:\n", len(items))
		fmt.Println(renderTable(os.Stdout, itemHeaders, itemRows(items), []columnAlignment{alignLeft, alignRight}))
		return nil
	}

	if items == nil {
		items = []csl.Item{}
	}
	outputJSON(items)
	return nil
}

func parseAuthorQueries(raw []string) []author.Query {
	queries := make([]author.Query, 0, len(raw))
	for _, r := range raw {
		if q := author.ParseQuery(r); q.Last != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// filterByAuthors keeps items whose authors satisfy every query, up to limit
// items when limit > 0.
func filterByAuthors(items []csl.Item, queries []author.Query, limit int) []csl.Item {
	var out []csl.Item
	for _, item := range items {
		if !author.AllMatch(queries, item.NamesFor("author")) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
