package interfaces

import (
	"context"
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService loads Markdown pages from disk and renders them into HTML.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
}

// Document represents a Markdown file with parsed metadata and content.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	// Checksum stores the SHA-256 digest of the original file content.
	Checksum []byte
}

// FrontMatter models page metadata extracted from Markdown files. Custom keeps
// every key not mapped to a field so layouts can read site specific values.
type FrontMatter struct {
	Title          string         `yaml:"title" json:"title"`
	Slug           string         `yaml:"slug" json:"slug"`
	Permalink      string         `yaml:"permalink" json:"permalink"`
	Summary        string         `yaml:"summary" json:"summary"`
	Layout         string         `yaml:"layout" json:"layout"`
	Tags           []string       `yaml:"tags" json:"tags"`
	Date           time.Time      `yaml:"date" json:"date"`
	Updated        time.Time      `yaml:"updated" json:"updated"`
	Draft          bool           `yaml:"draft" json:"draft"`
	ChangeFreq     string         `yaml:"changefreq" json:"changefreq"`
	Priority       string         `yaml:"priority" json:"priority"`
	Sitemap        bool           `yaml:"sitemap" json:"sitemap"`
	// SitemapExclude drops a rendered page from livePages and the sitemap.
	SitemapExclude bool           `yaml:"sitemapExclude" json:"sitemap_exclude"`
	Custom         map[string]any `yaml:",inline" json:"custom"`
	Raw            map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
}
