package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
	"github.com/matsen/nbib/internal/storage"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the library",
	Long: `Rebuild the SQLite search index from items.jsonl.

Use this after pulling changes from git or if the index becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	count := mustRebuild(db, repoRoot)

	if humanOutput {
		fmt.Printf("Rebuilt search index with %d items\n", count)
	} else {
		outputJSON(RebuildResult{
			Status: "rebuilt",
			Items:  count,
		})
	}
	return nil
}

// mustRebuild reloads the index from items.jsonl, exits on error.
func mustRebuild(db *storage.DB, repoRoot string) int {
	count, err := db.RebuildFromJSONL(config.ItemsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}
	return count
}
