package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-site/pkg/interfaces"
)

const defaultPattern = "*.md"

// LoaderConfig configures page discovery under the content root.
type LoaderConfig struct {
	BasePath  string
	Pattern   string
	Recursive bool
}

// Loader reads pages from a content filesystem. Entries whose name starts
// with "." or "_" are never published: they hold partials, drafts folders or
// VCS metadata.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
}

// DocumentResult pairs a parsed page with its raw source.
type DocumentResult struct {
	Document *interfaces.Document
	Source   []byte
}

// LoadParams override discovery for a single call.
type LoadParams struct {
	Pattern   string
	Recursive *bool
}

// NewLoader returns a loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = defaultPattern
	}
	return &Loader{
		fs:        filesystem,
		basePath:  filepath.Clean(cfg.BasePath),
		pattern:   filepath.ToSlash(pattern),
		recursive: cfg.Recursive,
	}
}

// LoadFile parses one page. Paths may be relative to the content root or
// absolute paths inside BasePath.
func (l *Loader) LoadFile(ctx context.Context, name string) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := l.relative(name)
	if err != nil {
		return nil, err
	}
	return l.read(rel)
}

// LoadDirectory parses every published page under dir in path order.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, params LoadParams) ([]*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := l.relative(dir)
	if err != nil {
		return nil, err
	}

	paths, err := l.discover(ctx, root, params)
	if err != nil {
		return nil, err
	}

	results := make([]*DocumentResult, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := l.read(rel)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (l *Loader) discover(ctx context.Context, root string, params LoadParams) ([]string, error) {
	recursive := l.recursive
	if params.Recursive != nil {
		recursive = *params.Recursive
	}
	pattern := l.pattern
	if override := strings.TrimSpace(params.Pattern); override != "" {
		pattern = filepath.ToSlash(override)
	}

	var paths []string
	err := fs.WalkDir(l.fs, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != root && unpublished(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if matchPattern(pattern, p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown loader: walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) read(rel string) (*DocumentResult, error) {
	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: read %s: %w", rel, err)
	}
	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: stat %s: %w", rel, err)
	}
	doc, err := BuildDocument(rel, data, info.ModTime())
	if err != nil {
		return nil, fmt.Errorf("markdown loader: %s: %w", rel, err)
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]
	return &DocumentResult{Document: doc, Source: data}, nil
}

// relative maps name onto the slash separated fs.FS namespace.
func (l *Loader) relative(name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		if l.basePath == "" || l.basePath == "." {
			return "", fmt.Errorf("markdown loader: absolute path %s without a content root", name)
		}
		rel, err := filepath.Rel(l.basePath, clean)
		if err != nil {
			return "", fmt.Errorf("markdown loader: %s is outside %s: %w", name, l.basePath, err)
		}
		clean = rel
	}
	rel := filepath.ToSlash(clean)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("markdown loader: %s is outside the content root", name)
	}
	return rel, nil
}

func unpublished(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// matchPattern matches against the base name unless the pattern names a
// directory. A leading "**/" is accepted and ignored.
func matchPattern(pattern, p string) bool {
	pattern = strings.TrimPrefix(pattern, "**/")
	target := path.Base(p)
	if strings.Contains(pattern, "/") {
		target = p
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}
