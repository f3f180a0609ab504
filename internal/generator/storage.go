package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

type writeCategory string

const (
	categoryPage    writeCategory = "page"
	categorySitemap writeCategory = "sitemap"
	categoryRobots  writeCategory = "robots"
)

var (
	errWriteContentRequired = errors.New("generator: write requires content reader")
	errWritePathRequired    = errors.New("generator: write requires path")
	// ErrUnsafeOutputDir guards Clean against removing the working directory or root.
	ErrUnsafeOutputDir = errors.New("generator: refusing to clean unsafe output directory")
)

// writeFileRequest describes a file write relative to the output directory.
type writeFileRequest struct {
	Path     string
	Content  io.Reader
	Category writeCategory
	Checksum string
}

// artifactWriter abstracts where generator outputs land.
type artifactWriter interface {
	WriteFile(ctx context.Context, req writeFileRequest) error
	Clean(ctx context.Context) error
}

func newArtifactWriter(root string, dryRun bool) artifactWriter {
	if dryRun {
		return noopWriter{}
	}
	return &fsWriter{root: root}
}

// fsWriter replaces files atomically so a server reading the output directory
// never observes a partially written page.
type fsWriter struct {
	root string
}

func (w *fsWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errWriteContentRequired
	}
	if strings.TrimSpace(req.Path) == "" {
		return errWritePathRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(w.root, filepath.FromSlash(req.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir for %s: %w", req.Path, err)
	}
	if err := atomic.WriteFile(target, req.Content); err != nil {
		return fmt.Errorf("generator: write %s %s: %w", req.Category, req.Path, err)
	}
	return nil
}

func (w *fsWriter) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	root := filepath.Clean(strings.TrimSpace(w.root))
	if root == "" || root == "." || root == string(filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrUnsafeOutputDir, w.root)
	}
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("generator: read output dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return fmt.Errorf("generator: clean %s: %w", entry.Name(), err)
		}
	}
	return nil
}

type noopWriter struct{}

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

func (noopWriter) Clean(context.Context) error { return nil }
