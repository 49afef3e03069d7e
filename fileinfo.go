package capsulevault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileInfo describes one file selected for a batch operation.
type FileInfo struct {
	Path string
	Size int64
}

// FileCollector gathers files for batch operations, applying a size cap
// and an optional extension filter. The zero value collects nothing; use
// NewFileCollector for sensible defaults.
type FileCollector struct {
	// MaxFileSize rejects files larger than this many bytes.
	MaxFileSize int64
	// Extensions, when non-empty, restricts collection to these extensions
	// (with or without the leading dot).
	Extensions []string
	// Recursive descends into subdirectories.
	Recursive bool
}

// NewFileCollector returns a collector with a 100 MB size cap, no
// extension filter, and no recursion.
func NewFileCollector() *FileCollector {
	return &FileCollector{MaxFileSize: 100 * 1024 * 1024}
}

// Collect expands the given paths into a validated file list. Directories
// contribute their entries (recursively if configured); explicit file
// arguments bypass the extension filter but not the size cap. All
// violations are gathered into a single ValidationError.
func (fc *FileCollector) Collect(paths ...string) ([]FileInfo, error) {
	var (
		files    []FileInfo
		problems []string
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		if !info.IsDir() {
			if info.Size() > fc.MaxFileSize {
				problems = append(problems, fmt.Sprintf("%s: %d bytes exceeds limit %d", path, info.Size(), fc.MaxFileSize))
				continue
			}
			files = append(files, FileInfo{Path: path, Size: info.Size()})
			continue
		}

		err = filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if entry != path && !fc.Recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !fc.matchesExtension(entry) {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				return err
			}
			if fi.Size() > fc.MaxFileSize {
				problems = append(problems, fmt.Sprintf("%s: %d bytes exceeds limit %d", entry, fi.Size(), fc.MaxFileSize))
				return nil
			}

			files = append(files, FileInfo{Path: entry, Size: fi.Size()})
			return nil
		})
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", path, err))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}

	slices.SortFunc(files, func(a, b FileInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

func (fc *FileCollector) matchesExtension(path string) bool {
	if len(fc.Extensions) == 0 {
		return true
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, allowed := range fc.Extensions {
		if ext == strings.TrimPrefix(strings.ToLower(allowed), ".") {
			return true
		}
	}
	return false
}
