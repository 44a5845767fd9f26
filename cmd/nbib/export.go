package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
	"github.com/matsen/nbib/internal/csl"
	"github.com/matsen/nbib/internal/export"
)

var (
	exportBibtex bool
	exportKeys   string
	exportAppend string
)

func init() {
	exportCmd.Flags().BoolVar(&exportBibtex, "bibtex", false, "Export to BibTeX format")
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified IDs (comma-separated)")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append BibTeX entries missing from this .bib file")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export library items as CSL-JSON or BibTeX",
	Long: `Export library items as CSL-JSON (default) or BibTeX.

Examples:
  nbib export > library.json
  nbib export --bibtex > refs.bib
  nbib export --bibtex --keys 5b7c0a3e-...,9d1e2f3a-...
  nbib export --bibtex --append paper/refs.bib`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// AppendResult is the response for export --append.
type AppendResult struct {
	Path     string `json:"path"`
	Appended int    `json:"appended"`
	Skipped  int    `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var items []csl.Item
	if exportKeys != "" {
		for _, key := range strings.Split(exportKeys, ",") {
			key = strings.TrimSpace(key)
			item, err := db.GetByID(key)
			if err != nil {
				exitWithError(ExitError, "getting item %s: %v", key, err)
			}
			if item == nil {
				exitWithError(ExitError, "unknown key: %s", key)
			}
			items = append(items, *item)
		}
	} else {
		var err error
		items, err = db.ListAll(0)
		if err != nil {
			exitWithError(ExitError, "listing items: %v", err)
		}
	}

	bibtex := exportBibtex || settings.DefaultFormat == config.FormatBibTeX
	if exportAppend != "" {
		appendBibTeX(exportAppend, items)
		return nil
	}

	if bibtex {
		// BibTeX is always text output, never JSON
		fmt.Print(export.ToBibTeXList(items))
		return nil
	}
	if err := csl.Encode(os.Stdout, items, settings.Indent); err != nil {
		exitWithError(ExitError, "writing output: %v", err)
	}
	return nil
}

// appendBibTeX adds entries to path for items not already present by key or DOI.
func appendBibTeX(path string, items []csl.Item) {
	idx, err := export.LoadBibTeXIndex(path)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}

	var entries []string
	for _, item := range items {
		if idx.HasItem(item) {
			continue
		}
		idx.Add(item)
		entries = append(entries, export.ToBibTeX(item))
	}

	if err := export.AppendEntries(path, entries); err != nil {
		exitWithError(ExitError, "appending to %s: %v", path, err)
	}

	result := AppendResult{Path: path, Appended: len(entries), Skipped: len(items) - len(entries)}
	if humanOutput {
		fmt.Printf("Appended %d entries to %s (%d already present)\n", result.Appended, path, result.Skipped)
	} else {
		outputJSON(result)
	}
}
