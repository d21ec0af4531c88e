package scanners

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
	"github.com/reaandrew/lintdetector/utils"
	log "github.com/sirupsen/logrus"
)

// FileCollector expands the input paths into the sorted list of Go files to analyze.
type FileCollector struct {
	// BasePath anchors the include and exclude globs.
	BasePath string
	Includes []string
	Excludes []string
	// ChangedSince keeps only files changed in git after this date when set.
	ChangedSince string
	Changes      utils.ChangedFiles
}

// Collect returns absolute paths. Directories are walked recursively, skipping
// hidden and vendored directories. Explicitly named files are kept as long as
// they are Go files.
func (c FileCollector) Collect(inputs []string) ([]string, error) {
	filter, err := rules.NewPathFilter(c.Includes, c.Excludes)
	if err != nil {
		return nil, fmt.Errorf("invalid global path filter: %w", err)
	}

	seen := map[string]struct{}{}
	for _, input := range inputs {
		absInput, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve input %s: %w", input, err)
		}
		info, err := os.Stat(absInput)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input path '%s' does not exist", input)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", input, err)
		}
		if !info.IsDir() {
			if isGoFile(absInput) {
				seen[absInput] = struct{}{}
			}
			continue
		}
		err = filepath.WalkDir(absInput, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("Skipping unreadable path")
				return nil
			}
			if d.IsDir() {
				if path != absInput && c.skipDir(absInput, path, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if isGoFile(path) {
				seen[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", input, err)
		}
	}

	var changed map[string]struct{}
	if c.ChangedSince != "" {
		changes := c.Changes
		if changes == nil {
			changes = utils.GitChangedFiles{}
		}
		repoPath := c.BasePath
		if repoPath == "" {
			repoPath = "."
		}
		if changed, err = changes.ChangedSince(repoPath, c.ChangedSince); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		if !filter.Accepts(syntax.RelativePath(c.BasePath, path)) {
			continue
		}
		if changed != nil {
			if _, ok := changed[path]; !ok {
				continue
			}
		}
		files = append(files, path)
	}
	slices.Sort(files)
	log.WithField("files", len(files)).Debug("Collected input files")
	return files, nil
}

func (c FileCollector) skipDir(root, path, name string) bool {
	if strings.HasPrefix(name, ".") || name == "testdata" {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return enry.IsVendor(filepath.ToSlash(rel) + "/")
}

func isGoFile(path string) bool {
	return filepath.Ext(path) == ".go"
}
