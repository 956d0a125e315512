package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"

	"slimpdf/internal/compression"
)

// Defaults are the tunable compression settings applied when no CLI flag
// overrides them.
type Defaults struct {
	ImportantPages   int     `mapstructure:"important_pages"`
	FirstPageQuality int     `mapstructure:"first_page_quality"`
	RemainingQuality int     `mapstructure:"remaining_quality"`
	FirstPageDPI     int     `mapstructure:"first_page_dpi"`
	RemainingDPI     int     `mapstructure:"remaining_dpi"`
	TargetSizeMB     float64 `mapstructure:"target_size_mb"`
}

// Config holds application configuration
type Config struct {
	WorkingDir   string
	AppDataDir   string
	DatabasePath string
	MagickPath   string
	Defaults     Defaults
}

// New creates a new configuration instance
func New() (*Config, error) {
	cfg := &Config{}

	cfg.setupDirectories()
	cfg.setupMagickPath()
	if err := cfg.loadDefaults(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Request builds a compression request for the given paths from the
// configured defaults.
func (c *Config) Request(inputPath, outputPath string) compression.Request {
	return compression.Request{
		InputPath:        inputPath,
		OutputPath:       outputPath,
		TargetSizeMB:     c.Defaults.TargetSizeMB,
		ImportantPages:   c.Defaults.ImportantPages,
		FirstPageQuality: c.Defaults.FirstPageQuality,
		RemainingQuality: c.Defaults.RemainingQuality,
		FirstPageDPI:     c.Defaults.FirstPageDPI,
		RemainingDPI:     c.Defaults.RemainingDPI,
	}
}

func (c *Config) setupDirectories() {
	// Set up working directory (temp page images)
	c.WorkingDir = filepath.Join(os.TempDir(), "slimpdf")
	os.MkdirAll(c.WorkingDir, 0755)

	// Set up app data directory (history database, settings)
	c.AppDataDir = getAppDataDir()
	os.MkdirAll(c.AppDataDir, 0755)

	c.DatabasePath = filepath.Join(c.AppDataDir, "history.sqlite3")
}

// setupMagickPath resolves the ImageMagick binary. ImageMagick 7 installs a
// single `magick` entrypoint, version 6 ships `convert`.
func (c *Config) setupMagickPath() {
	if path, err := exec.LookPath("magick"); err == nil {
		c.MagickPath = path
		return
	}
	if path, err := exec.LookPath("convert"); err == nil {
		c.MagickPath = path
	}
}

func (c *Config) loadDefaults() error {
	v := viper.New()
	v.SetConfigName("slimpdf")
	v.SetConfigType("yaml")
	v.AddConfigPath(c.AppDataDir)
	v.AddConfigPath(".")
	v.SetEnvPrefix("slimpdf")
	v.AutomaticEnv()

	v.SetDefault("important_pages", compression.DefaultImportantPages)
	v.SetDefault("first_page_quality", compression.DefaultFirstPageQuality)
	v.SetDefault("remaining_quality", compression.DefaultRemainingQuality)
	v.SetDefault("first_page_dpi", compression.DefaultFirstPageDPI)
	v.SetDefault("remaining_dpi", compression.DefaultRemainingDPI)
	v.SetDefault("target_size_mb", 0.0)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v.Unmarshal(&c.Defaults)
}

func getAppDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "slimpdf")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".slimpdf")
}
