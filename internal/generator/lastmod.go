package generator

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LastModResolver reports when a source file last changed. A zero time with a
// nil error means the resolver has no answer.
type LastModResolver interface {
	LastModified(ctx context.Context, sourcePath string) (time.Time, error)
}

// GitLastMod reads the committer date of the latest commit touching a file.
type GitLastMod struct {
	dir string
	run func(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// NewGitLastMod returns a resolver running git inside dir, the content root.
func NewGitLastMod(dir string) *GitLastMod {
	return &GitLastMod{dir: dir, run: runGit}
}

// LastModified implements LastModResolver.
func (g *GitLastMod) LastModified(ctx context.Context, sourcePath string) (time.Time, error) {
	out, err := g.run(ctx, g.dir, "log", "-1", "--format=%cI", "--", filepath.FromSlash(sourcePath))
	if err != nil {
		return time.Time{}, fmt.Errorf("generator: git log %s: %w", sourcePath, err)
	}
	value := strings.TrimSpace(string(out))
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("generator: parse git date %q: %w", value, err)
	}
	return parsed, nil
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// lastModified applies the fallback chain: git history, front matter updated,
// front matter date, then the build time.
func (s *service) lastModified(ctx context.Context, page *PageData, fallback time.Time) time.Time {
	if s.deps.LastMod != nil {
		when, err := s.deps.LastMod.LastModified(ctx, page.Document.FilePath)
		if err != nil {
			s.logger.Debug("generator.lastmod.unavailable", "source", page.Document.FilePath, "error", err)
		} else if !when.IsZero() {
			return when
		}
	}
	fm := page.Document.FrontMatter
	if !fm.Updated.IsZero() {
		return fm.Updated
	}
	if !fm.Date.IsZero() {
		return fm.Date
	}
	return fallback
}
