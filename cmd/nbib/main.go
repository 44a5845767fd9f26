// Package main provides the nbib CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
	"github.com/matsen/nbib/internal/logging"
	"github.com/matsen/nbib/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string

	// settings and logger are resolved before any command runs
	settings = config.DefaultSettings()
	logger   = logging.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nbib",
	Short: "Convert PubMed/MEDLINE citations to CSL-JSON",
	Long: `nbib converts MEDLINE/PubMed tagged citation exports (.nbib files)
to CSL-JSON, and keeps a small local library of converted items.

The library lives in .nbib/ as git-versionable JSONL with an ephemeral
SQLite index for search. All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

// setup loads .env, layers configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var repoCfg *config.Config
	if start, code := getStartingDirectory(); code == 0 {
		if root, err := config.FindRepository(start); err == nil {
			if repoCfg, err = config.Load(root); err != nil {
				exitWithError(ExitConfigError, "%v", err)
			}
		}
	}

	settings, err = config.Resolve(global, repoCfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}

	logger, err = logging.New(os.Stderr, logging.Options{Level: settings.LogLevel, Format: settings.LogFormat})
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger.Debug("configuration resolved",
		slog.String("on_error", settings.OnError),
		slog.String("default_format", settings.DefaultFormat))
	return nil
}

// getStartingDirectory returns the directory to start searching for a library.
// NBIB_ROOT takes precedence over the working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv(config.EnvRoot); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the library, exits on error.
// Returns the library root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v (run 'nbib init' first)", err)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
