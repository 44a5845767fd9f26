package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/nbib/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show effective settings or set a library setting",
	Long: `Show effective settings or set a library setting.

Settings are layered: built-in defaults, then ~/.config/nbib/config.yml,
then .nbib/config.json, then NBIB_* environment variables (also read
from a .env file).

Usage:
  nbib config                        # Show effective settings
  nbib config on-error               # Get one setting
  nbib config on-error skip          # Set in .nbib/config.json
  nbib config default-format bibtex

Library keys:
  on-error        abort or skip malformed citation blocks
  default-format  csl or bibtex`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	config.Settings
	GlobalPath string `json:"global_path"`
	Library    string `json:"library,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		resp := ConfigResponse{Settings: settings, GlobalPath: config.GlobalConfigPath()}
		if start, code := getStartingDirectory(); code == 0 {
			if root, err := config.FindRepository(start); err == nil {
				resp.Library = root
			}
		}
		if humanOutput {
			fmt.Printf("on-error:        %s\n", settings.OnError)
			fmt.Printf("default-format:  %s\n", settings.DefaultFormat)
			fmt.Printf("log-level:       %s\n", settings.LogLevel)
			fmt.Printf("log-format:      %s\n", settings.LogFormat)
			fmt.Printf("indent:          %t\n", settings.Indent)
			fmt.Printf("global config:   %s\n", resp.GlobalPath)
			if resp.Library != "" {
				fmt.Printf("library:         %s\n", resp.Library)
			}
		} else {
			outputJSON(resp)
		}
		return nil
	}

	key := normalizeKey(args[0])
	if len(args) == 1 {
		value, ok := settingValue(settings, key)
		if !ok {
			exitWithError(ExitError, "unknown config key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	repoRoot := mustFindRepository()
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := applySetting(cfg, key, args[1]); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, args[1])
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: args[1]})
	}
	return nil
}

// normalizeKey accepts on_error, on-error and ON-ERROR alike.
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}

func settingValue(s config.Settings, key string) (string, bool) {
	switch key {
	case "on-error":
		return s.OnError, true
	case "default-format":
		return s.DefaultFormat, true
	case "log-level":
		return s.LogLevel, true
	case "log-format":
		return s.LogFormat, true
	case "indent":
		return fmt.Sprintf("%t", s.Indent), true
	}
	return "", false
}

// applySetting sets key on the library config after validating value.
func applySetting(cfg *config.Config, key, value string) error {
	next := *cfg
	switch key {
	case "on-error":
		next.OnError = strings.ToLower(value)
	case "default-format":
		next.DefaultFormat = strings.ToLower(value)
	default:
		return fmt.Errorf("%s cannot be set per library (use %s)", key, config.GlobalConfigPath())
	}

	check := config.DefaultSettings()
	if next.OnError != "" {
		check.OnError = next.OnError
	}
	if next.DefaultFormat != "" {
		check.DefaultFormat = next.DefaultFormat
	}
	if err := check.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}
