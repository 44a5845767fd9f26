package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new nbib library",
	Long: `Initialize a new nbib library in the current directory.

Creates:
  .nbib/
  ├── items.jsonl     # Empty file
  ├── config.json     # Default config
  └── cache/          # Empty directory (gitignored)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if err := initLibrary(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized nbib library in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}
	return nil
}

// initLibrary creates the .nbib layout under root.
func initLibrary(root string) error {
	if config.IsRepository(root) {
		return fmt.Errorf("directory already contains an nbib library")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	f, err := os.Create(config.ItemsPath(root))
	if err != nil {
		return fmt.Errorf("creating %s: %w", config.ItemsFile, err)
	}
	f.Close()

	cfg := &config.Config{}
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("creating %s: %w", config.ConfigFile, err)
	}

	// The index is rebuilt from items.jsonl, so keep it out of git
	gitignore := []byte(config.CacheDir + "/\n")
	if err := os.WriteFile(filepath.Join(config.NbibPath(root), ".gitignore"), gitignore, 0644); err != nil {
		return fmt.Errorf("creating .gitignore: %w", err)
	}
	return nil
}
