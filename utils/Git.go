package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	log "github.com/sirupsen/logrus"
)

const CloneBaseDir = "lintdetector-repos"

func SanitizeRepoName(fullName string) string {
	return strings.ReplaceAll(fullName, "/", "_")
}

func ExtractRepoName(repoURL string) (string, error) {
	var repoName string
	if strings.HasPrefix(repoURL, "git@") {
		parts := strings.Split(repoURL, ":")
		if len(parts) != 2 {
			return "", fmt.Errorf("unexpected repository URL format")
		}
		repoName = strings.TrimSuffix(parts[1], ".git")
	} else if strings.HasPrefix(repoURL, "https://") || strings.HasPrefix(repoURL, "http://") {
		parts := strings.Split(strings.TrimSuffix(repoURL, "/"), "/")
		if len(parts) < 2 {
			return "", fmt.Errorf("unexpected repository URL format")
		}
		repoName = strings.TrimSuffix(parts[len(parts)-1], ".git")
	} else {
		return "", fmt.Errorf("unsupported repository URL format")
	}
	return repoName, nil
}

// CloneDestination is where CloneRepository places repoURL under the temp dir.
func CloneDestination(repoURL string) (string, error) {
	name, err := ExtractRepoName(repoURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(os.TempDir(), CloneBaseDir, SanitizeRepoName(name)), nil
}

// CloneRepository clones cloneURL into destination unless it is already there.
func CloneRepository(ctx context.Context, cloneURL, destination string) error {
	if _, err := os.Stat(destination); err == nil {
		log.WithField("destination", destination).Info("Repository already cloned, skipping clone")
		return nil
	}

	_, err := git.PlainCloneContext(ctx, destination, false, &git.CloneOptions{
		URL:      cloneURL,
		Progress: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}
	return nil
}
