package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

// Repository is a remote checkout source.
type Repository struct {
	URL string
	Ref string // branch or tag, empty for the remote default branch
}

// Cloner shallow-clones repositories with the git binary.
type Cloner struct {
	binary string
	logger *slog.Logger
}

func NewCloner() *Cloner {
	return &Cloner{binary: "git", logger: logger.Named("git")}
}

// Clone checks repo out into destDir. An existing checkout is left untouched;
// any other non-empty destDir is an error.
func (c *Cloner) Clone(ctx context.Context, destDir string, repo Repository) error {
	log := c.logger.With("url", repo.URL, "ref", repo.Ref, "path", destDir)

	if _, err := os.Stat(filepath.Join(destDir, ".git")); err == nil {
		log.Info("repository already cloned, skipping")
		return nil
	}

	entries, err := os.ReadDir(destDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to inspect '%s': %w", destDir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("'%s' is not empty and not a git checkout", destDir)
	}

	if err := os.MkdirAll(filepath.Dir(destDir), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	args := []string{"clone", "--depth", "1"}
	if repo.Ref != "" {
		args = append(args, "--branch", repo.Ref)
	}
	args = append(args, repo.URL, destDir)

	log.Info("cloning repository")

	out, err := exec.CommandContext(ctx, c.binary, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone of '%s' failed: %w: %s", repo.URL, err, strings.TrimSpace(string(out)))
	}

	log.Info("repository cloned")
	return nil
}
