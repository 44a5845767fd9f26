package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
	"github.com/matsen/nbib/internal/storage"
)

var (
	importDryRun    bool
	importKeepGoing bool
)

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.Flags().BoolVar(&importKeepGoing, "keep-going", false, "Skip malformed citation blocks instead of failing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a MEDLINE/PubMed export into the library",
	Long: `Convert a MEDLINE/PubMed export and add new items to the library.

Items are identified by their content-derived ID, so importing the same
export twice adds nothing the second time.

Examples:
  nbib import pubmed-export.nbib
  nbib import pubmed-export.nbib --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// DryRunResult represents the result of a dry-run import.
type DryRunResult struct {
	WouldImport int            `json:"would_import"`
	WouldSkip   int            `json:"would_skip"`
	Failed      int            `json:"failed"`
	Details     []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	ID     string `json:"id"`
	Action string `json:"action"` // new, exists, duplicate
	Title  string `json:"title"`
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	f, err := os.Open(args[0])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}
	defer f.Close()

	incoming, report, err := convertStream(f, importKeepGoing || settings.SkipInvalid(), logger)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if report.Skipped > 0 && report.Converted == 0 {
		exitWithError(ExitDataError, "failed to convert any citation blocks")
	}

	itemsPath := config.ItemsPath(repoRoot)
	if importDryRun {
		existing, err := storage.ReadAll(itemsPath)
		if err != nil {
			exitWithError(ExitDataError, "reading existing items: %v", err)
		}
		classified := storage.Classify(existing, incoming)
		details := importDetails(classified)
		fresh := storage.NewItems(classified)
		if humanOutput {
			printImportHuman(details, report)
			fmt.Printf("\nWould import %d, skip %d\n", len(fresh), len(classified)-len(fresh))
		} else {
			outputJSON(DryRunResult{
				WouldImport: len(fresh),
				WouldSkip:   len(classified) - len(fresh),
				Failed:      report.Skipped,
				Details:     details,
			})
		}
		return nil
	}

	classified, err := storage.Import(itemsPath, incoming)
	if err != nil {
		exitWithError(ExitDataError, "importing items: %v", err)
	}
	details := importDetails(classified)
	fresh := storage.NewItems(classified)
	skipped := len(classified) - len(fresh)

	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	mustRebuild(db, repoRoot)

	if humanOutput {
		printImportHuman(details, report)
		fmt.Printf("\nImported %d, skipped %d\n", len(fresh), skipped)
	} else {
		errs := report.Errors
		if errs == nil {
			errs = []string{}
		}
		outputJSON(ImportResult{
			Imported: len(fresh),
			Skipped:  skipped,
			Failed:   report.Skipped,
			Errors:   errs,
		})
	}
	return nil
}

func importDetails(classified []storage.ItemWithAction) []ImportDetail {
	details := make([]ImportDetail, 0, len(classified))
	for _, c := range classified {
		details = append(details, ImportDetail{
			ID:     c.Item.ID,
			Action: c.Action,
			Title:  c.Item.Title(),
		})
	}
	return details
}

func printImportHuman(details []ImportDetail, report ConversionReport) {
	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{shortID(d.ID), d.Action, truncateString(d.Title, ImportTitleMaxLen)})
	}
	fmt.Println(renderTable(os.Stdout, []string{"ID", "Action", "Title"}, rows, nil))

	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", e)
	}
}
