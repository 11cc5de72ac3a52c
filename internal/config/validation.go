package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
)

// dictionaryRe matches 7z dictionary sizes such as 64m, 256m, 1g or 1048576.
var dictionaryRe = regexp.MustCompile(`^[1-9][0-9]*[bkmgBKMG]?$`)

// Validate checks structural invariants of a loaded Config and reports every
// problem found in a single configuration error. Chapter archive names are
// checked by the chapter registry, which owns that rule.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Version != 1 {
		problems = append(problems, fmt.Sprintf("version: must be 1, got %d", cfg.Version))
	}

	if strings.TrimSpace(cfg.Tools.Builder) == "" {
		problems = append(problems, "tools.builder: path to the builder executable is required")
	}
	if strings.TrimSpace(cfg.Tools.Archiver) == "" {
		problems = append(problems, "tools.archiver: is required")
	}

	if strings.TrimSpace(cfg.Repository.Path) == "" {
		problems = append(problems, "repository.path: is required")
	}
	if filepath.IsAbs(filepath.FromSlash(cfg.Repository.Artifact)) {
		problems = append(problems, fmt.Sprintf("repository.artifact: %q must be relative to repository.path", cfg.Repository.Artifact))
	}
	switch cfg.Repository.VCS {
	case VCSCLI, VCSGoGit:
	default:
		problems = append(problems, fmt.Sprintf("repository.vcs: unknown backend %q (supported: %s, %s)", cfg.Repository.VCS, VCSCLI, VCSGoGit))
	}

	if cfg.Archive.Level < 1 || cfg.Archive.Level > 9 {
		problems = append(problems, fmt.Sprintf("archive.level: must be between 1 and 9, got %d", cfg.Archive.Level))
	}
	if !dictionaryRe.MatchString(cfg.Archive.Dictionary) {
		problems = append(problems, fmt.Sprintf("archive.dictionary: %q is not a 7z dictionary size", cfg.Archive.Dictionary))
	}

	if strings.ContainsAny(cfg.Output.ManagedDir, `/\`) {
		problems = append(problems, fmt.Sprintf("output.managed_dir: %q must be a single directory name", cfg.Output.ManagedDir))
	}

	if len(cfg.Chapters) == 0 {
		problems = append(problems, "chapters: at least one chapter is required")
	}
	for i, ch := range cfg.Chapters {
		cpath := fmt.Sprintf("chapters[%d]", i)
		if strings.TrimSpace(ch.Branch) == "" {
			problems = append(problems, fmt.Sprintf("%s: branch is required", cpath))
		}
		if strings.TrimSpace(ch.DataFolder) == "" {
			problems = append(problems, fmt.Sprintf("%s: data_folder is required", cpath))
		}
		if strings.TrimSpace(ch.Archive) == "" {
			problems = append(problems, fmt.Sprintf("%s: archive is required", cpath))
		}
	}

	if len(problems) > 0 {
		return errors.ConfigError("invalid configuration: "+strings.Join(problems, "; ")).
			WithContext("problems", problems).
			Build()
	}
	return nil
}
