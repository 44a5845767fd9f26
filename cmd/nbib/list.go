package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/csl"
)

var listLimit int

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all items",
	Long: `List all items in the library.

Examples:
  nbib list
  nbib list --limit 100 --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	items, err := db.ListAll(listLimit)
	if err != nil {
		exitWithError(ExitError, "listing items: %v", err)
	}

	if humanOutput {
		total, _ := db.Count()
		if len(items) == 0 {
			fmt.Println("No items in library")
			return nil
		}
		if listLimit > 0 && listLimit < total {
			fmt.Printf("%d items (showing first %d):\n", total, len(items))
		} else {
			fmt.Printf("%d items in library:\n", len(items))
		}
		fmt.Println(renderTable(os.Stdout, itemHeaders, itemRows(items), []columnAlignment{alignLeft, alignRight}))
		return nil
	}

	if items == nil {
		items = []csl.Item{}
	}
	outputJSON(items)
	return nil
}
