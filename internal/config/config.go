// Package config loads and validates the .codoc.yml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".codoc.yml"

// Defaults for values that neither a flag nor the config file set.
const (
	DefaultRoot            = "."
	DefaultOutput          = "-"
	DefaultFormat          = "markdown"
	DefaultWorkers         = 8
	DefaultCache           = ".codoc/scan-cache.json"
	DefaultLogLevel        = "info"
	DefaultRequirementLink = "https://devops.aliyun.com/projex/req/{id}"
	DefaultDefectLink      = "https://devops.aliyun.com/projex/bug/{id}"
)

// DefaultIgnoreFiles are the ignore files read from the scan root.
var DefaultIgnoreFiles = []string{".gitignore", ".codocignore"}

// Config holds every setting the commands share.
type Config struct {
	Root        string   `yaml:"root" validate:"required"`
	Output      string   `yaml:"output" validate:"required"`
	Format      string   `yaml:"format" validate:"oneof=markdown json yaml html"`
	Workers     int      `yaml:"workers" validate:"min=1,max=256"`
	Exclude     []string `yaml:"exclude"`
	IgnoreFiles []string `yaml:"ignore_files"`
	Cache       string   `yaml:"cache" validate:"required"`
	Links       Links    `yaml:"links"`
	LogLevel    string   `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Links holds tracker URL templates; {id} is replaced by the identifier.
type Links struct {
	Requirement string `yaml:"requirement" validate:"required,contains={id}"`
	Defect      string `yaml:"defect" validate:"required,contains={id}"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:        DefaultRoot,
		Output:      DefaultOutput,
		Format:      DefaultFormat,
		Workers:     DefaultWorkers,
		IgnoreFiles: slices.Clone(DefaultIgnoreFiles),
		Cache:       DefaultCache,
		Links: Links{
			Requirement: DefaultRequirementLink,
			Defect:      DefaultDefectLink,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads the codoc section of a config file. Unset keys are left zero.
// An empty path or a missing default file yields a zero Config.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var file struct {
		Codoc Config `yaml:"codoc"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return file.Codoc, nil
}

// Apply copies file values into cfg wherever cfg still holds the default.
func Apply(cfg *Config, file Config) {
	def := Default()

	if cfg.Root == def.Root && file.Root != "" {
		cfg.Root = file.Root
	}
	if cfg.Output == def.Output && file.Output != "" {
		cfg.Output = file.Output
	}
	if cfg.Format == def.Format && file.Format != "" {
		cfg.Format = file.Format
	}
	if cfg.Workers == def.Workers && file.Workers != 0 {
		cfg.Workers = file.Workers
	}
	if len(cfg.Exclude) == 0 && len(file.Exclude) > 0 {
		cfg.Exclude = file.Exclude
	}
	if slices.Equal(cfg.IgnoreFiles, def.IgnoreFiles) && len(file.IgnoreFiles) > 0 {
		cfg.IgnoreFiles = file.IgnoreFiles
	}
	if cfg.Cache == def.Cache && file.Cache != "" {
		cfg.Cache = file.Cache
	}
	if cfg.Links.Requirement == def.Links.Requirement && file.Links.Requirement != "" {
		cfg.Links.Requirement = file.Links.Requirement
	}
	if cfg.Links.Defect == def.Links.Defect && file.Links.Defect != "" {
		cfg.Links.Defect = file.Links.Defect
	}
	if cfg.LogLevel == def.LogLevel && file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CachePath resolves the cache location against root.
func (c Config) CachePath() string {
	if filepath.IsAbs(c.Cache) {
		return c.Cache
	}
	return filepath.Join(c.Root, c.Cache)
}
