package config

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration path used when --config is not given.
const DefaultConfigFile = "chapterbuilder.yaml"

// Config is the complete chapterbuilder configuration. It is read once at
// startup and treated as read-only afterwards.
type Config struct {
	Version    int              `yaml:"version"`
	Tools      ToolsConfig      `yaml:"tools"`
	Repository RepositoryConfig `yaml:"repository"`
	Output     OutputConfig     `yaml:"output"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Journal    JournalConfig    `yaml:"journal,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
	Chapters   []ChapterEntry   `yaml:"chapters"`
}

// ToolsConfig locates the external programs the pipeline drives.
type ToolsConfig struct {
	Builder  string `yaml:"builder"`  // MSBuild.exe or a compatible builder
	Git      string `yaml:"git"`      // only used by the cli vcs backend
	Archiver string `yaml:"archiver"` // 7z
}

// RepositoryConfig describes the source working tree shared by every chapter.
type RepositoryConfig struct {
	Path          string     `yaml:"path"`
	Solution      string     `yaml:"solution"`
	Artifact      string     `yaml:"artifact"` // relative to Path
	Configuration string     `yaml:"configuration"`
	VCS           VCSBackend `yaml:"vcs"`
}

// VCSBackend selects how branches are checked out.
type VCSBackend string

const (
	VCSCLI   VCSBackend = "cli"    // git binary
	VCSGoGit VCSBackend = "go-git" // in-process
)

// OutputConfig controls where per-chapter trees and archives are written.
type OutputConfig struct {
	Root       string `yaml:"root"`
	ArchiveDir string `yaml:"archive_dir"`
	ManagedDir string `yaml:"managed_dir"`
}

// ArchiveConfig holds the fixed compression parameters.
type ArchiveConfig struct {
	Level      int    `yaml:"level"`
	Dictionary string `yaml:"dictionary"`
}

// JournalConfig enables the SQLite build journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig enables writing a Prometheus textfile at the end of a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// ChapterEntry is one row of the chapter table.
type ChapterEntry struct {
	Branch     string `yaml:"branch"`
	DataFolder string `yaml:"data_folder"`
	Archive    string `yaml:"archive"`
}

// RepoPath returns the repository working tree path.
func (c *Config) RepoPath() string {
	return c.Repository.Path
}

// SolutionPath returns the solution/project file handed to the builder.
func (c *Config) SolutionPath() string {
	if filepath.IsAbs(c.Repository.Solution) {
		return c.Repository.Solution
	}
	return filepath.Join(c.Repository.Path, filepath.FromSlash(c.Repository.Solution))
}

// BuiltArtifactPath is where the builder leaves its output. It is derived
// from the repository path on every call.
func (c *Config) BuiltArtifactPath() string {
	return filepath.Join(c.Repository.Path, filepath.FromSlash(c.Repository.Artifact))
}

// ArtifactFileName is the base name of the built artifact.
func (c *Config) ArtifactFileName() string {
	return filepath.Base(filepath.FromSlash(c.Repository.Artifact))
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				WithContext(errors.HintKey, "Run 'chapterbuilder init' to create an example configuration.").
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references first, then
// applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders cfg back to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
