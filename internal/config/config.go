// Package config provides configuration management.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-multierror"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"dbu-cost/core/catalog"
	"dbu-cost/core/rounding"
	"dbu-cost/internal/errors"
	"dbu-cost/internal/logging"
)

// AppName names the config and cache directories
const AppName = "dbu-cost"

// Config is the main application configuration
type Config struct {
	// Pricing locates the rate table and its last-known-good cache
	Pricing PricingConfig `yaml:"pricing" koanf:"pricing"`

	// Rounding sets the default rounding of cost lines
	Rounding RoundingConfig `yaml:"rounding" koanf:"rounding"`

	// Currency sets the default FX conversion
	Currency CurrencyConfig `yaml:"currency" koanf:"currency"`

	// Output contains output configuration
	Output OutputConfig `yaml:"output" koanf:"output"`

	// Logging contains logging configuration
	Logging logging.Config `yaml:"logging" koanf:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// TablePath is the default pricing table
	TablePath string `yaml:"table_path" koanf:"table_path"`

	// CacheDir holds the last-known-good table; empty disables it
	CacheDir string `yaml:"cache_dir" koanf:"cache_dir"`

	// FallbackToCache serves the cached table when a load fails
	FallbackToCache bool `yaml:"fallback_to_cache" koanf:"fallback_to_cache"`
}

// RoundingConfig contains rounding defaults
type RoundingConfig struct {
	Mode  string `yaml:"mode" koanf:"mode"`
	Scale int    `yaml:"scale" koanf:"scale"`
}

// CurrencyConfig contains currency defaults
type CurrencyConfig struct {
	// Output labels the result currency; empty keeps the table currency
	Output string `yaml:"output,omitempty" koanf:"output"`

	// FXRate multiplies table rates when set
	FXRate *float64 `yaml:"fx_rate,omitempty" koanf:"fx_rate"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default report format
	Format string `yaml:"format" koanf:"format"`

	// ShowAssumptions includes the assumption log in human formats
	ShowAssumptions bool `yaml:"show_assumptions" koanf:"show_assumptions"`
}

// Formats lists the accepted output.format values
var Formats = []string{"text", "json", "markdown"}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Pricing: PricingConfig{
			TablePath:       "pricing.json",
			CacheDir:        catalog.DefaultCacheDir(),
			FallbackToCache: true,
		},
		Rounding: RoundingConfig{
			Mode:  "half-up",
			Scale: 2,
		},
		Output: OutputConfig{
			Format:          "text",
			ShowAssumptions: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/dbu-cost/config.yaml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, errors.Config(fmt.Sprintf("config %s could not be parsed", path), err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Config(fmt.Sprintf("config %s has invalid values", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var merr *multierror.Error

	if _, err := rounding.ParseMode(c.Rounding.Mode); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("rounding.mode: %w", err))
	}
	if c.Rounding.Scale < 0 {
		merr = multierror.Append(merr, fmt.Errorf("rounding.scale must be >= 0, got %d", c.Rounding.Scale))
	}
	if fx := c.Currency.FXRate; fx != nil && (math.IsNaN(*fx) || math.IsInf(*fx, 0) || *fx <= 0) {
		merr = multierror.Append(merr, fmt.Errorf("currency.fx_rate must be a positive number, got %v", *fx))
	}
	if out := c.Currency.Output; out != "" && !isCurrencyCode(out) {
		merr = multierror.Append(merr, fmt.Errorf("currency.output must be a 3-letter currency code, got %q", out))
	}
	if !validFormat(c.Output.Format) {
		merr = multierror.Append(merr, fmt.Errorf("output.format must be one of %s, got %q", strings.Join(Formats, ", "), c.Output.Format))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errors.Config("invalid configuration", err).WithIssues(errors.Flatten(err)...)
	}
	return nil
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

var (
	mu           sync.RWMutex
	globalConfig = Default()
)

// Get returns the global configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = config
}
