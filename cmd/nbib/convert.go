package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
	"github.com/matsen/nbib/internal/csl"
	"github.com/matsen/nbib/internal/export"
	"github.com/matsen/nbib/internal/medline"
)

var (
	convertFormat    string
	convertKeepGoing bool
	convertCompact   bool
)

func init() {
	convertCmd.Flags().StringVar(&convertFormat, "format", "", "Output format: csl or bibtex (default from config)")
	convertCmd.Flags().BoolVar(&convertKeepGoing, "keep-going", false, "Skip malformed citation blocks instead of failing")
	convertCmd.Flags().BoolVar(&convertCompact, "compact", false, "Write CSL-JSON on one line")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert [file|-]",
	Short: "Convert a MEDLINE/PubMed export to CSL-JSON",
	Long: `Convert a MEDLINE/PubMed tagged export (.nbib) to CSL-JSON.

Reads standard input when no file or "-" is given. A malformed citation
block aborts the conversion unless --keep-going or on_error: skip is set.

Examples:
  nbib convert pubmed-export.nbib
  nbib convert --format bibtex < pubmed-export.nbib > refs.bib
  nbib convert --keep-going --compact export.nbib`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

// ConversionReport summarizes blocks skipped during a conversion.
type ConversionReport struct {
	Converted int      `json:"converted"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	format := settings.DefaultFormat
	if convertFormat != "" {
		format = convertFormat
	}
	if format != config.FormatCSL && format != config.FormatBibTeX {
		exitWithError(ExitError, "unknown format: %s (use csl or bibtex)", format)
	}

	in, closeIn, err := openInput(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer closeIn()

	skip := convertKeepGoing || settings.SkipInvalid()
	items, report, err := convertStream(in, skip, logger)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if report.Skipped > 0 && report.Converted == 0 {
		exitWithError(ExitDataError, "failed to convert any citation blocks")
	}

	switch format {
	case config.FormatBibTeX:
		fmt.Print(export.ToBibTeXList(items))
	default:
		if err := csl.Encode(os.Stdout, items, settings.Indent && !convertCompact); err != nil {
			exitWithError(ExitError, "writing output: %v", err)
		}
	}

	if report.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d malformed citation blocks\n", report.Skipped)
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
	}
	return nil
}

// openInput returns the named file, or stdin for no argument or "-".
func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// convertStream runs the MEDLINE pipeline over r. With skip unset, the
// first bad block is returned as the error. Read errors are always fatal.
func convertStream(r io.Reader, skip bool, log *slog.Logger) ([]csl.Item, ConversionReport, error) {
	parser := medline.NewParser(log)

	var report ConversionReport
	items := []csl.Item{}
	for item, err := range parser.Items(r) {
		if err != nil {
			var blockErr *medline.BlockError
			if !skip || !errors.As(err, &blockErr) {
				return nil, report, err
			}
			log.Warn("skipping citation block", slog.Int("block", blockErr.Block), slog.Any("error", blockErr.Err))
			report.Skipped++
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		items = append(items, item)
		report.Converted++
	}
	return items, report, nil
}
