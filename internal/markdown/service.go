package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// ErrDocumentNil is returned when RenderDocument receives no document.
var ErrDocumentNil = errors.New("markdown service: document is nil")

// Config describes the content root and the parser defaults for every page.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
}

// Service loads site pages and renders their bodies to HTML.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	pages  *Loader
	logger interfaces.Logger
	source fs.FS
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS reads pages from filesystem instead of BasePath on disk.
func WithFS(filesystem fs.FS) ServiceOption {
	return func(s *Service) {
		s.source = filesystem
	}
}

// NewService wires a page loader over the content root. A nil parser falls
// back to goldmark with cfg.Parser as defaults.
func NewService(cfg Config, parser interfaces.MarkdownParser, opts ...ServiceOption) (*Service, error) {
	s := &Service{cfg: cfg, parser: parser, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.source == nil {
		root, err := contentRoot(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		s.source = root
	}
	s.pages = NewLoader(s.source, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	if s.parser == nil {
		s.parser = NewGoldmarkParser(cfg.Parser, WithParserLogger(s.logger))
	}
	return s, nil
}

// Load reads and renders one page.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	page, err := s.pages.LoadFile(ctx, s.contentPath(path))
	if err != nil {
		return nil, err
	}
	if _, err := s.RenderDocument(ctx, page.Document, opts.Parser); err != nil {
		return nil, err
	}
	return page.Document, nil
}

// LoadDirectory reads and renders every page under dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	pages, err := s.pages.LoadDirectory(ctx, s.contentPath(dir), LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, len(pages))
	for i, page := range pages {
		if _, err := s.RenderDocument(ctx, page.Document, opts.Parser); err != nil {
			return nil, err
		}
		docs[i] = page.Document
	}
	s.logger.Debug("markdown.pages.loaded", "dir", dir, "count", len(docs))
	return docs, nil
}

// Render converts raw markdown with the service defaults plus opts.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, s.parseOptions(opts))
}

// RenderDocument renders doc.Body and stores the result in doc.BodyHTML.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, ErrDocumentNil
	}
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return html, nil
}

// parseOptions layers per call flags over the configured defaults. Flags can
// only be switched on; an extension list replaces the default one.
func (s *Service) parseOptions(opts interfaces.ParseOptions) interfaces.ParseOptions {
	merged := s.cfg.Parser
	if len(opts.Extensions) > 0 {
		merged.Extensions = append([]string(nil), opts.Extensions...)
	}
	merged.HardWraps = merged.HardWraps || opts.HardWraps
	merged.SafeMode = merged.SafeMode || opts.SafeMode
	return merged
}

func (s *Service) contentPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "."
	}
	p = filepath.Clean(p)
	if base := strings.TrimSpace(s.cfg.BasePath); base != "" && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(base, p); err == nil {
			p = rel
		}
	}
	return filepath.ToSlash(p)
}

func contentRoot(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("markdown service: content root %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown service: content root %s is not a directory", basePath)
	}
	return os.DirFS(basePath), nil
}
