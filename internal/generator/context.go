package generator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-site/pkg/interfaces"
)

var (
	errMarkdownServiceRequired = errors.New("generator: markdown service is required")
	// ErrDuplicateRoute indicates two source files resolve to the same route.
	ErrDuplicateRoute = errors.New("generator: duplicate route")
)

// BuildContext aggregates the page data required to execute a static build.
type BuildContext struct {
	BuildID     string
	GeneratedAt time.Time
	Site        SiteMetadata
	Pages       []*PageData
	Collections Collections
	Options     BuildOptions
}

// SiteMetadata exposes global site values to layouts.
type SiteMetadata struct {
	Name    string
	BaseURL string
	Data    map[string]any
}

// PageData pairs a loaded document with its resolved route and layout.
type PageData struct {
	Document *interfaces.Document
	Route    string
	Output   string
	Layout   string
}

// Live reports whether the page itself qualifies for livePages and the
// sitemap. Error pages and feeds never do.
func (p *PageData) Live() bool {
	if p == nil || p.Document == nil || p.Route == "" {
		return false
	}
	fm := p.Document.FrontMatter
	if fm.Draft || !fm.Sitemap || fm.SitemapExclude {
		return false
	}
	return !strings.Contains(p.Route, "404") && !strings.HasSuffix(p.Route, "feed.xml")
}

// Collections groups pages for layouts. Every slice is sorted by route.
type Collections struct {
	All       []*PageData
	LivePages []*PageData
	Tags      map[string][]*PageData
	LLMS      LLMSCollection
}

// sitemapExclusions holds the site wide route exclusions.
type sitemapExclusions struct {
	exact    map[string]struct{}
	prefixes []string
}

func newSitemapExclusions(exact, prefixes []string) sitemapExclusions {
	ex := sitemapExclusions{exact: make(map[string]struct{}, len(exact))}
	for _, route := range exact {
		if route = strings.TrimSpace(route); route != "" {
			ex.exact[route] = struct{}{}
		}
	}
	for _, prefix := range prefixes {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			ex.prefixes = append(ex.prefixes, prefix)
		}
	}
	return ex
}

func (ex sitemapExclusions) excludes(route string) bool {
	if _, ok := ex.exact[route]; ok {
		return true
	}
	for _, prefix := range ex.prefixes {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Markdown == nil {
		return nil, errMarkdownServiceRequired
	}

	docs, err := s.deps.Markdown.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("generator: load pages: %w", err)
	}

	routes := map[string]string{}
	pages := make([]*PageData, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if doc.FrontMatter.Draft && !opts.IncludeDrafts {
			continue
		}
		route := routeFor(doc)
		if previous, ok := routes[route]; ok {
			return nil, fmt.Errorf("%w: %s claimed by %s and %s", ErrDuplicateRoute, route, previous, doc.FilePath)
		}
		routes[route] = doc.FilePath

		layout := strings.TrimSpace(doc.FrontMatter.Layout)
		if layout == "" {
			layout = s.cfg.DefaultLayout
		}
		pages = append(pages, &PageData{
			Document: doc,
			Route:    route,
			Output:   buildOutputPath(route),
			Layout:   layout,
		})
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Route < pages[j].Route
	})

	rules, err := loadLLMSRules(s.cfg.LLMSFile)
	if err != nil {
		return nil, err
	}

	data := maps.Clone(s.cfg.SiteData)
	if data == nil {
		data = map[string]any{}
	}

	return &BuildContext{
		BuildID:     uuid.NewString(),
		GeneratedAt: s.now(),
		Site: SiteMetadata{
			Name:    s.cfg.SiteName,
			BaseURL: strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/"),
			Data:    data,
		},
		Pages:       pages,
		Collections: buildCollections(pages, newSitemapExclusions(s.cfg.SitemapExcludeExact, s.cfg.SitemapExcludePrefixes), rules),
		Options:     opts,
	}, nil
}

// buildCollections expects pages sorted by route.
func buildCollections(pages []*PageData, exclusions sitemapExclusions, rules LLMSRules) Collections {
	collections := Collections{
		All:       append([]*PageData(nil), pages...),
		LivePages: make([]*PageData, 0, len(pages)),
		Tags:      map[string][]*PageData{},
		LLMS:      buildLLMS(pages, rules),
	}
	for _, page := range pages {
		if page.Live() && !exclusions.excludes(page.Route) {
			collections.LivePages = append(collections.LivePages, page)
		}
		seen := map[string]struct{}{}
		for _, tag := range page.Document.FrontMatter.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			collections.Tags[tag] = append(collections.Tags[tag], page)
		}
	}
	return collections
}
