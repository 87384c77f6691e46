// Package config merges command-line flags, DOCTYPE_* environment variables
// and an optional .doctype.yaml file into the settings a run uses.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/doctypetool/doctype/pkg/console"
	"github.com/doctypetool/doctype/pkg/constants"
	"github.com/doctypetool/doctype/pkg/doctype"
	"github.com/doctypetool/doctype/pkg/reportfmt"
)

// Settings holds the merged configuration for one invocation.
type Settings struct {
	SystemID     string        `mapstructure:"system-id"`
	PublicID     string        `mapstructure:"public-id"`
	OmitSystemID bool          `mapstructure:"omit-system-id"`
	OmitPublicID bool          `mapstructure:"omit-public-id"`
	Root         string        `mapstructure:"root"`
	Quiet        bool          `mapstructure:"quiet"`
	Format       string        `mapstructure:"format"`
	ReportFile   string        `mapstructure:"report-file"`
	Jobs         int           `mapstructure:"jobs"`
	Color        string        `mapstructure:"color"`
	Verbose      bool          `mapstructure:"verbose"`
	Watch        WatchSettings `mapstructure:"watch"`

	// ConfigFile is the file the settings were read from, empty when none was used.
	ConfigFile string `mapstructure:"-"`
}

// WatchSettings configures the watch command.
type WatchSettings struct {
	Debounce   time.Duration `mapstructure:"debounce"`
	Extensions []string      `mapstructure:"extensions"`
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist.
	ConfigFile string
	// Dir is searched for .doctype.yaml when ConfigFile is empty. Defaults to
	// the working directory.
	Dir string
	// Flags are bound over every other source. Only flags whose names match
	// a settings key are bound.
	Flags *pflag.FlagSet
}

// Keys lists every settings key in the order they appear in the config file.
var Keys = []string{
	"system-id",
	"public-id",
	"omit-system-id",
	"omit-public-id",
	"root",
	"quiet",
	"format",
	"report-file",
	"jobs",
	"color",
	"verbose",
	"watch.debounce",
	"watch.extensions",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("system-id", "")
	v.SetDefault("public-id", "")
	v.SetDefault("omit-system-id", false)
	v.SetDefault("omit-public-id", false)
	v.SetDefault("root", "")
	v.SetDefault("quiet", false)
	v.SetDefault("format", string(reportfmt.FormatXML))
	v.SetDefault("report-file", "")
	v.SetDefault("jobs", runtime.NumCPU())
	v.SetDefault("color", string(console.ColorAuto))
	v.SetDefault("verbose", false)
	v.SetDefault("watch.debounce", 300*time.Millisecond)
	v.SetDefault("watch.extensions", constants.WatchedExtensions)
}

// Load reads settings with precedence flags > environment > config file > defaults.
// A config file is checked against the configuration schema before it is read;
// violations are returned as a *SchemaError.
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	path, err := configFilePath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := ValidateFile(path); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if opts.Flags != nil {
		for _, key := range Keys {
			if f := opts.Flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", key, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.ConfigFile = path
	return &s, nil
}

func configFilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		return opts.ConfigFile, nil
	}

	path := filepath.Join(opts.Dir, constants.DefaultConfigFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to check for %s: %w", path, err)
	}
	return path, nil
}

// Policy builds the override policy the settings describe.
func (s *Settings) Policy() doctype.OverridePolicy {
	return doctype.OverridePolicy{
		ForcedPublicID: s.PublicID,
		ForcedSystemID: s.SystemID,
		ForcedRoot:     s.Root,
		OmitPublicID:   s.OmitPublicID,
		OmitSystemID:   s.OmitSystemID,
	}
}

// ReportFormat returns the parsed report format.
func (s *Settings) ReportFormat() reportfmt.Format {
	f, err := reportfmt.ParseFormat(s.Format)
	if err != nil {
		return reportfmt.FormatXML
	}
	return f
}

// ColorMode returns the parsed color mode.
func (s *Settings) ColorMode() console.ColorMode {
	mode, err := console.ParseColorMode(s.Color)
	if err != nil {
		return console.ColorAuto
	}
	return mode
}

// Validate reports the first inconsistency in the settings. Conflicting
// override options are returned as a *doctype.ConfigError.
func (s *Settings) Validate() error {
	if err := s.Policy().Validate(); err != nil {
		return err
	}
	if _, err := reportfmt.ParseFormat(s.Format); err != nil {
		return err
	}
	if _, err := console.ParseColorMode(s.Color); err != nil {
		return err
	}
	if s.Jobs < 1 {
		return fmt.Errorf("invalid jobs value %d: must be at least 1", s.Jobs)
	}
	if s.Watch.Debounce <= 0 {
		return fmt.Errorf("invalid watch debounce %s: must be positive", s.Watch.Debounce)
	}
	for _, ext := range s.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid watch extension %q: must start with '.'", ext)
		}
	}
	return nil
}
