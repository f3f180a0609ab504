package sitecmd

import (
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site/internal/generator"
)

const (
	buildSiteMessageType    = "site.build"
	buildPageMessageType    = "site.build_page"
	buildSitemapMessageType = "site.sitemap"
	cleanSiteMessageType    = "site.clean"
)

// ResultCallback receives build results. It runs synchronously inside the
// handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries the outcome of a generator command.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Page     *generator.RenderedPage
	Metadata map[string]any
}

// BuildSiteCommand runs a full generator build.
type BuildSiteCommand struct {
	DryRun         bool           `json:"dry_run,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (BuildSiteCommand) Validate() error { return nil }

// BuildPageCommand renders a single markdown source.
type BuildPageCommand struct {
	Source         string         `json:"source"`
	DryRun         bool           `json:"dry_run,omitempty"`
	IncludeDrafts  bool           `json:"include_drafts,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildPageCommand) Type() string { return buildPageMessageType }

// Validate requires a relative markdown source path.
func (m BuildPageCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Source,
			validation.Required,
			validation.By(func(value any) error {
				source, _ := value.(string)
				clean := path.Clean(strings.TrimSpace(source))
				if strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
					return validation.NewError("site.build_page.source_outside", "source must be inside the content directory")
				}
				return nil
			}),
		),
	)
}

// BuildSitemapCommand regenerates sitemap.xml without rendering pages.
type BuildSitemapCommand struct{}

// Type implements command.Message.
func (BuildSitemapCommand) Type() string { return buildSitemapMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (BuildSitemapCommand) Validate() error { return nil }

// CleanSiteCommand removes generator output.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }
