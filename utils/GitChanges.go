package utils

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/markusmobius/go-dateparser"
)

// ChangedFiles reports which files of a git work tree changed after a cutoff.
type ChangedFiles interface {
	ChangedSince(repoPath, cutoffDate string) (map[string]struct{}, error)
}

// GitChangedFiles walks the commit log with go-git.
type GitChangedFiles struct{}

// ChangedSince returns absolute paths of files touched by commits newer than
// cutoffDate plus files with uncommitted changes. cutoffDate accepts anything
// go-dateparser understands, such as "2 weeks ago" or "2024-01-31".
func (g GitChangedFiles) ChangedSince(repoPath, cutoffDate string) (map[string]struct{}, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open git worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	cutoffTimestamp, err := parseCutoffDate(cutoffDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cutoff date: %w", err)
	}

	changed := map[string]struct{}{}

	commitIter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve commit history: %w", err)
	}
	err = commitIter.ForEach(func(c *object.Commit) error {
		if cutoffTimestamp != -1 && c.Committer.When.Unix() < cutoffTimestamp {
			return storer.ErrStop
		}
		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("failed to read stats of commit %s: %w", c.Hash, err)
		}
		for _, stat := range stats {
			changed[filepath.Join(root, filepath.FromSlash(stat.Name))] = struct{}{}
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("error processing commits: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}
	for name, fileStatus := range status {
		if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
			changed[filepath.Join(root, filepath.FromSlash(name))] = struct{}{}
		}
	}
	return changed, nil
}

// parseCutoffDate parses the cutoff date string into a Unix timestamp.
// If the dateStr is empty, it returns -1 to indicate no cutoff.
func parseCutoffDate(dateStr string) (int64, error) {
	if dateStr == "" {
		return -1, nil
	}

	parsedTime, err := dateparser.Parse(nil, dateStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse date string '%s': %w", dateStr, err)
	}

	return parsedTime.Time.Unix(), nil
}
