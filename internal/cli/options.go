package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/codoc/internal/config"
	"github.com/example/codoc/internal/logging"
	"github.com/example/codoc/internal/model"
	"github.com/example/codoc/internal/report"
)

// ScanConfig holds the settings shared by the commands: the project
// configuration plus per-invocation options.
type ScanConfig struct {
	config.Config

	ConfigPath   string
	LogFormat    string
	Since        string
	NoCache      bool
	Requirements []string
	Types        []string
}

func newScanConfig() *ScanConfig {
	return &ScanConfig{Config: config.Default(), LogFormat: "console"}
}

func bindProjectFlags(cmd *cobra.Command, c *ScanConfig) {
	cmd.Flags().StringVar(&c.ConfigPath, "config", "", "Path to .codoc.yml config file (default ./.codoc.yml when present)")
	cmd.Flags().StringVar(&c.Root, "root", config.DefaultRoot, "Project root; item paths are relative to it")
	cmd.Flags().StringVar(&c.Cache, "cache", config.DefaultCache, "Cache file, relative to the root")
	cmd.Flags().StringVar(&c.LogLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&c.LogFormat, "log-format", "console", "Log format: console or json")
}

func bindOutputFlags(cmd *cobra.Command, c *ScanConfig) {
	cmd.Flags().StringVarP(&c.Output, "output", "o", config.DefaultOutput, "Path to output file or '-' for stdout")
	cmd.Flags().StringVarP(&c.Format, "format", "f", config.DefaultFormat, "Output format: markdown, json, yaml or html")
	cmd.Flags().StringVar(&c.Links.Requirement, "req-link", config.DefaultRequirementLink, "Requirement tracker URL template containing {id}")
	cmd.Flags().StringVar(&c.Links.Defect, "bug-link", config.DefaultDefectLink, "Defect tracker URL template containing {id}")
	cmd.Flags().StringSliceVarP(&c.Requirements, "req", "r", nil, "Only report these requirement IDs")
	cmd.Flags().StringSliceVarP(&c.Types, "type", "t", nil, "Only report these block types")
}

func bindScanFlags(cmd *cobra.Command, c *ScanConfig) {
	cmd.Flags().IntVarP(&c.Workers, "workers", "w", config.DefaultWorkers, "Files parsed in parallel")
	cmd.Flags().StringSliceVarP(&c.Exclude, "exclude", "e", nil, "Extra exclude patterns (gitignore syntax)")
	cmd.Flags().StringSliceVar(&c.IgnoreFiles, "ignore-file", config.DefaultIgnoreFiles, "Ignore files read from the root")
}

// setup overlays the config file, validates the result and builds the
// logger.
func setup(c *ScanConfig) (*zap.Logger, error) {
	file, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.Apply(&c.Config, file)

	if err := config.Validate(c.Config); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(c.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	c.Root = root

	return logging.New(c.LogLevel, c.LogFormat)
}

func (c *ScanConfig) links() report.Links {
	return report.Links(c.Links)
}

// view applies the requirement and block type filters.
func (c *ScanConfig) view(result *model.Result) *model.Result {
	return result.Filter(c.Requirements).FilterTypes(c.Types)
}

// FileSystem interface for dependency injection
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Create(name string) (*os.File, error)
}

// DefaultFileSystem implements FileSystem
type DefaultFileSystem struct{}

func (fs *DefaultFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *DefaultFileSystem) Create(name string) (*os.File, error) {
	return os.Create(name)
}

var defaultFileSystem FileSystem = &DefaultFileSystem{}

func writeOutput(result *model.Result, c *ScanConfig, stdout io.Writer) error {
	return writeOutputWithFS(result, c, stdout, defaultFileSystem)
}

func writeOutputWithFS(result *model.Result, c *ScanConfig, stdout io.Writer, fs FileSystem) error {
	if c.Output == "-" {
		return report.Write(stdout, c.Format, result, c.links())
	}

	outDir := filepath.Dir(c.Output)
	if fi, err := fs.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory %s does not exist; please create it first", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outDir)
	}

	f, err := fs.Create(c.Output) // #nosec G304
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = f.Close() }()
	return report.Write(f, c.Format, result, c.links())
}
