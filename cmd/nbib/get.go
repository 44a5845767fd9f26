package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
	"github.com/matsen/nbib/internal/csl"
	"github.com/matsen/nbib/internal/storage"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id|pmid>",
	Short: "Show one item",
	Long: `Show one item by its ID or PubMed identifier.

Examples:
  nbib get 5b7c0a3e-2f1d-5c8e-9a4b-0d6e1f2a3b4c
  nbib get 31000000 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	key := strings.TrimSpace(args[0])

	var item *csl.Item
	if _, err := os.Stat(config.DBPath(repoRoot)); os.IsNotExist(err) {
		// No index yet; look in items.jsonl directly.
		item = findInLibrary(repoRoot, key)
	} else {
		db := mustOpenDatabase(repoRoot)
		defer db.Close()

		item, err = db.GetByID(key)
		if err == nil && item == nil {
			item, err = db.GetByPMID(key)
		}
		if err != nil {
			exitWithError(ExitError, "getting item %s: %v", key, err)
		}
	}
	if item == nil {
		exitWithError(ExitError, "item not found: %s", key)
	}

	if humanOutput {
		printItemHuman(*item)
		return nil
	}
	outputJSON(item)
	return nil
}

// findInLibrary looks key up as an ID, then as a PMID, in items.jsonl.
func findInLibrary(repoRoot, key string) *csl.Item {
	items, err := storage.ReadAll(config.ItemsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading items: %v", err)
	}
	if i, ok := storage.FindByID(items, key); ok {
		return &items[i]
	}
	for i := range items {
		if storage.PMID(items[i]) == key {
			return &items[i]
		}
	}
	return nil
}

func printItemHuman(item csl.Item) {
	fmt.Printf("ID:      %s\n", item.ID)
	fmt.Printf("Title:   %s\n", item.Title())
	if authors := item.NamesFor("author"); len(authors) > 0 {
		fmt.Printf("Authors: %s\n", formatAuthorsShort(authors, len(authors)))
	}
	if journal, ok := item.Value("container-title"); ok {
		fmt.Printf("Journal: %s\n", journal)
	}
	if issued, ok := item.Date("issued"); ok {
		fmt.Printf("Issued:  %s\n", issued.RawString())
	}
	if doi, ok := item.Value("DOI"); ok {
		fmt.Printf("DOI:     %s\n", doi)
	}
	if pmid := storage.PMID(item); pmid != "" {
		fmt.Printf("PMID:    %s\n", pmid)
	}
	if abstract, ok := item.Value("abstract"); ok {
		fmt.Printf("\n%s\n", abstract)
	}
}
