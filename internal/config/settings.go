package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Error policies for blocks that fail to convert.
const (
	OnErrorAbort = "abort"
	OnErrorSkip  = "skip"
)

// Output formats for converted items.
const (
	FormatCSL    = "csl"
	FormatBibTeX = "bibtex"
)

// Environment variables that override file configuration.
const (
	EnvRoot      = "NBIB_ROOT"
	EnvOnError   = "NBIB_ON_ERROR"
	EnvLogLevel  = "NBIB_LOG_LEVEL"
	EnvLogFormat = "NBIB_LOG_FORMAT"
	EnvFormat    = "NBIB_FORMAT"
)

// ErrInvalidSetting is returned when a setting has an unsupported value.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings is the effective configuration after layering defaults, the
// global config, the library config and the environment, in that order.
type Settings struct {
	OnError       string `json:"on_error"`
	LogLevel      string `json:"log_level"`
	LogFormat     string `json:"log_format"`
	DefaultFormat string `json:"default_format"`
	Indent        bool   `json:"indent"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		OnError:       OnErrorAbort,
		LogLevel:      "warn",
		LogFormat:     "text",
		DefaultFormat: FormatCSL,
		Indent:        true,
	}
}

// Resolve layers global and library configuration (either may be nil) and
// the NBIB_* environment over the defaults, then validates the result.
func Resolve(global *GlobalConfig, repo *Config) (Settings, error) {
	s := DefaultSettings()

	if global != nil {
		override(&s.OnError, global.OnError)
		override(&s.LogLevel, global.LogLevel)
		override(&s.LogFormat, global.LogFormat)
		override(&s.DefaultFormat, global.DefaultFormat)
		if global.Indent != nil {
			s.Indent = *global.Indent
		}
	}
	if repo != nil {
		override(&s.OnError, repo.OnError)
		override(&s.DefaultFormat, repo.DefaultFormat)
	}

	override(&s.OnError, os.Getenv(EnvOnError))
	override(&s.LogLevel, os.Getenv(EnvLogLevel))
	override(&s.LogFormat, os.Getenv(EnvLogFormat))
	override(&s.DefaultFormat, os.Getenv(EnvFormat))

	return s, s.Validate()
}

// Validate checks that enumerated settings hold known values.
func (s Settings) Validate() error {
	if !slices.Contains([]string{OnErrorAbort, OnErrorSkip}, s.OnError) {
		return fmt.Errorf("%w: on_error must be %q or %q, got %q", ErrInvalidSetting, OnErrorAbort, OnErrorSkip, s.OnError)
	}
	if !slices.Contains([]string{FormatCSL, FormatBibTeX}, s.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be %q or %q, got %q", ErrInvalidSetting, FormatCSL, FormatBibTeX, s.DefaultFormat)
	}
	return nil
}

// SkipInvalid reports whether failed blocks are skipped rather than fatal.
func (s Settings) SkipInvalid() bool {
	return s.OnError == OnErrorSkip
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = strings.ToLower(v)
	}
}
