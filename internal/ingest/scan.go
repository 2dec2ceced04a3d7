// Package ingest discovers invoice PDFs on the local filesystem, either by
// a one-shot directory walk or by watching a drop folder.
package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/paperpoint/invoice-extractor/constants"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32 // every entry visited
	Matched uint32 // entries with an allowed extension
	Failed  uint32 // entries the walk could not read
}

// ScanDirectory walks root and returns matching file paths in lexical walk
// order, plus aggregate stats. Hidden files and directories are skipped when
// skipHidden is set. Unreadable entries are counted, not fatal.
func ScanDirectory(root string, skipHidden bool) ([]string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var paths []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !allowedExt(path) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, err
	}
	return paths, stats, nil
}

func allowedExt(path string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
