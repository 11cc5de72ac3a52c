// Package chapter builds the ordered, validated registry of chapters that the
// pipeline consumes.
package chapter

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
)

// Spec describes one buildable chapter. All paths are derived at
// construction and never change afterwards.
type Spec struct {
	branchName      string
	dataFolderName  string
	archiveFileName string

	outputChapterFolder string
	outputDllFolder     string
	outputDllPath       string
	outputArchivePath   string
}

// NewSpec validates entry and derives the chapter's output paths from cfg.
func NewSpec(entry config.ChapterEntry, cfg *config.Config) (*Spec, error) {
	branch := strings.TrimSpace(entry.Branch)
	folder := strings.TrimSpace(entry.DataFolder)
	archive := strings.TrimSpace(entry.Archive)

	if branch == "" {
		return nil, errors.ConfigError("chapter branch name is empty").Build()
	}
	if folder == "" {
		return nil, errors.ConfigError("chapter data folder is empty").
			WithContext("branch", branch).
			Build()
	}
	if strings.ContainsAny(archive, `/\`) {
		return nil, errors.ConfigError(fmt.Sprintf("archive name %q must be a file name, not a path", archive)).
			WithContext("branch", branch).
			Build()
	}
	if !hasExtension(archive) {
		return nil, errors.ConfigError(fmt.Sprintf("archive name %q must include a file extension", archive)).
			WithContext("branch", branch).
			WithContext(errors.HintKey, "Use a name such as experimental-drojf-dll-ep1.7z.").
			Build()
	}

	chapterFolder := filepath.Join(cfg.Output.Root, branch, folder)
	dllFolder := filepath.Join(chapterFolder, cfg.Output.ManagedDir)

	return &Spec{
		branchName:          branch,
		dataFolderName:      folder,
		archiveFileName:     archive,
		outputChapterFolder: chapterFolder,
		outputDllFolder:     dllFolder,
		outputDllPath:       filepath.Join(dllFolder, cfg.ArtifactFileName()),
		outputArchivePath:   filepath.Join(cfg.Output.ArchiveDir, archive),
	}, nil
}

// hasExtension reports whether name ends in a non-empty extension such as
// ".7z". A trailing dot alone does not count.
func hasExtension(name string) bool {
	ext := filepath.Ext(name)
	return len(ext) > 1 && len(ext) < len(name)
}

func (s *Spec) BranchName() string          { return s.branchName }
func (s *Spec) DataFolderName() string      { return s.dataFolderName }
func (s *Spec) ArchiveFileName() string     { return s.archiveFileName }
func (s *Spec) OutputChapterFolder() string { return s.outputChapterFolder }
func (s *Spec) OutputDllFolder() string     { return s.outputDllFolder }
func (s *Spec) OutputDllPath() string       { return s.outputDllPath }
func (s *Spec) OutputArchivePath() string   { return s.outputArchivePath }

func (s *Spec) String() string {
	return fmt.Sprintf("%s (%s -> %s)", s.branchName, s.dataFolderName, s.archiveFileName)
}
