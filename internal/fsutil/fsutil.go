// Package fsutil holds the filesystem operations of the pipeline: tolerant
// removal, idempotent directory creation and overwrite copy.
package fsutil

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
	"github.com/otiai10/copy"
)

// RemoveIfExists deletes path, which may be a file or a directory tree. A
// path that is already absent is not an error. It reports whether anything
// was removed.
func RemoveIfExists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to inspect path").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if err := os.RemoveAll(path); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to remove path").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return true, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	return nil
}

// CopyFileInto copies the file src into dstDir under its own base name,
// overwriting any existing file, and returns the destination path.
func CopyFileInto(src, dstDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "artifact to copy is missing").
			Fatal().
			WithContext("path", src).
			Build()
	}
	if info.IsDir() {
		return "", errors.FileSystemError("artifact to copy is a directory").
			WithContext("path", src).
			Build()
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	if err := copy.Copy(src, dst, copy.Options{Sync: true}); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to copy artifact").
			Fatal().
			WithContext("path", src).
			WithContext("destination", dst).
			Build()
	}
	return dst, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
