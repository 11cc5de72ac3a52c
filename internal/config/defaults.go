package config

import "strings"

// Default values mirroring the upstream higurashi-assembly layout.
const (
	DefaultGit           = "git"
	DefaultArchiver      = "7z"
	DefaultSolution      = "Assembly-CSharp.sln"
	DefaultArtifact      = "bin/Release/Assembly-CSharp.dll"
	DefaultConfiguration = "Release"
	DefaultOutputRoot    = "output"
	DefaultArchiveDir    = "archive_output"
	DefaultManagedDir    = "Managed"
	DefaultArchiveLevel  = 9
	DefaultDictionary    = "256m"
)

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Tools.Git == "" {
		cfg.Tools.Git = DefaultGit
	}
	if cfg.Tools.Archiver == "" {
		cfg.Tools.Archiver = DefaultArchiver
	}

	if cfg.Repository.Solution == "" {
		cfg.Repository.Solution = DefaultSolution
	}
	if cfg.Repository.Artifact == "" {
		cfg.Repository.Artifact = DefaultArtifact
	}
	if cfg.Repository.Configuration == "" {
		cfg.Repository.Configuration = DefaultConfiguration
	}
	cfg.Repository.VCS = VCSBackend(strings.ToLower(strings.TrimSpace(string(cfg.Repository.VCS))))
	if cfg.Repository.VCS == "" {
		cfg.Repository.VCS = VCSCLI
	}

	if cfg.Output.Root == "" {
		cfg.Output.Root = DefaultOutputRoot
	}
	if cfg.Output.ArchiveDir == "" {
		cfg.Output.ArchiveDir = DefaultArchiveDir
	}
	if cfg.Output.ManagedDir == "" {
		cfg.Output.ManagedDir = DefaultManagedDir
	}

	// 0 means store-only to 7z; an unset level gets the release default.
	if cfg.Archive.Level == 0 {
		cfg.Archive.Level = DefaultArchiveLevel
	}
	if cfg.Archive.Dictionary == "" {
		cfg.Archive.Dictionary = DefaultDictionary
	}
}
