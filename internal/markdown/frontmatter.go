package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-site/pkg/interfaces"
)

// ParseFrontMatter splits source into page metadata and the markdown body.
// Sources without a front matter block yield defaults and the full body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta.frontMatter(), body, nil
}

// BuildDocument parses source into a page. BodyHTML stays empty until the
// page is rendered.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title      string         `yaml:"title"`
	Slug       string         `yaml:"slug"`
	Permalink  string         `yaml:"permalink"`
	Summary    string         `yaml:"summary"`
	Layout     string         `yaml:"layout"`
	Tags       []string       `yaml:"tags"`
	Date       time.Time      `yaml:"date"`
	Updated    time.Time      `yaml:"updated"`
	Draft      bool           `yaml:"draft"`
	ChangeFreq string         `yaml:"changefreq"`
	Priority   any            `yaml:"priority"`
	Sitemap    *bool          `yaml:"sitemap"`
	Exclude    bool           `yaml:"sitemapExclude"`
	Custom     map[string]any `yaml:",inline"`
}

func (env frontMatterEnvelope) frontMatter() interfaces.FrontMatter {
	sitemap := env.Sitemap == nil || *env.Sitemap
	priority := formatPriority(env.Priority)

	// Raw holds the custom keys plus every known key that was set, so
	// layouts can read page metadata by its front matter name.
	raw := maps.Clone(env.Custom)
	if raw == nil {
		raw = map[string]any{}
	}
	for key, value := range map[string]string{
		"title":      env.Title,
		"slug":       env.Slug,
		"permalink":  env.Permalink,
		"summary":    env.Summary,
		"layout":     env.Layout,
		"changefreq": env.ChangeFreq,
		"priority":   priority,
	} {
		if value != "" {
			raw[key] = value
		}
	}
	if len(env.Tags) > 0 {
		raw["tags"] = slices.Clone(env.Tags)
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}
	if !env.Updated.IsZero() {
		raw["updated"] = env.Updated
	}
	raw["draft"] = env.Draft
	raw["sitemap"] = sitemap
	if env.Exclude {
		raw["sitemapExclude"] = true
	}

	custom := maps.Clone(env.Custom)
	if custom == nil {
		custom = map[string]any{}
	}

	return interfaces.FrontMatter{
		Title:          env.Title,
		Slug:           env.Slug,
		Permalink:      env.Permalink,
		Summary:        env.Summary,
		Layout:         env.Layout,
		Tags:           slices.Clone(env.Tags),
		Date:           env.Date,
		Updated:        env.Updated,
		Draft:          env.Draft,
		ChangeFreq:     strings.ToLower(strings.TrimSpace(env.ChangeFreq)),
		Priority:       priority,
		Sitemap:        sitemap,
		SitemapExclude: env.Exclude,
		Custom:         custom,
		Raw:            raw,
	}
}

// formatPriority accepts both quoted and bare YAML numbers.
func formatPriority(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
