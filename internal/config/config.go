package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "creditprep/internal/errors"
)

// Config is the complete pipeline configuration. Values are layered:
// defaults first, then the YAML file if one is found, then CREDITPREP_*
// environment variables on top.
type Config struct {
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	RunStore RunStoreConfig `yaml:"run_store" envconfig:"RUN_STORE"`
}

// DataConfig locates the raw input tables.
type DataConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" validate:"required"`
	// ExtraFeatureFiles lists additional per-client feature tables under
	// Dir, joined after the built-in aggregations.
	ExtraFeatureFiles []string `yaml:"extra_feature_files" envconfig:"EXTRA_FEATURE_FILES"`
}

// OutputConfig locates the cleaned output tables.
type OutputConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR" validate:"required"`
	TrainFile string `yaml:"train_file" envconfig:"TRAIN_FILE" validate:"required"`
	TestFile  string `yaml:"test_file" envconfig:"TEST_FILE" validate:"required"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file,required_if=Output both"`
}

// RunStoreConfig controls the run-history database.
type RunStoreConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	Path    string `yaml:"path" envconfig:"PATH" validate:"required_if=Enabled true"`
}

// Default returns the built-in configuration. All paths are relative and
// get anchored at the executable directory by ResolvePaths.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "data/raw",
		},
		Output: OutputConfig{
			Dir:       "data/processed",
			TrainFile: "train_clean.csv",
			TestFile:  "test_clean.csv",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/dataprep.log",
		},
		RunStore: RunStoreConfig{
			Enabled: true,
			Path:    "data/runs.db",
		},
	}
}

// Load builds the configuration. An empty path triggers a search of the
// usual config file locations; a missing file is not an error, the
// defaults and environment carry the run.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("reading config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("parsing config file %s", path), err)
		}
	}

	if err := envconfig.Process("CREDITPREP", cfg); err != nil {
		return nil, apperrors.NewConfigError("reading environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the struct rules.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}
	return nil
}

// findConfigFile checks the usual locations and returns the first config
// file that exists, or empty when none does.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
