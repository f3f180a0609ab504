package generator

import (
	"time"
)

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	Source   string
	Route    string
	Output   string
	Layout   string
	HTML     string
	Checksum string
	Duration time.Duration
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Source   string
	Route    string
	Layout   string
	Duration time.Duration
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
}

// templateData is the context handed to layouts: page, site, collections,
// content and build.
func templateData(buildCtx *BuildContext, page *PageData, views map[*PageData]map[string]any) map[string]any {
	return map[string]any{
		"page":        views[page],
		"site":        siteView(buildCtx.Site),
		"collections": collectionsView(buildCtx.Collections, views),
		"content":     string(page.Document.BodyHTML),
		"build": map[string]any{
			"id":           buildCtx.BuildID,
			"generated_at": buildCtx.GeneratedAt,
		},
	}
}

// pageViews precomputes the template view of every page so collections share
// the same maps.
func pageViews(pages []*PageData, baseURL string) map[*PageData]map[string]any {
	views := make(map[*PageData]map[string]any, len(pages))
	for _, page := range pages {
		views[page] = pageView(page, baseURL)
	}
	return views
}

func pageView(page *PageData, baseURL string) map[string]any {
	fm := page.Document.FrontMatter
	return map[string]any{
		"title":   fm.Title,
		"slug":    fm.Slug,
		"summary": fm.Summary,
		"tags":    append([]string(nil), fm.Tags...),
		"date":    fm.Date,
		"updated": fm.Updated,
		"draft":   fm.Draft,
		"layout":  page.Layout,
		"route":   page.Route,
		"url":     baseURL + page.Route,
		"source":  page.Document.FilePath,
		"content": string(page.Document.BodyHTML),
		"data":    fm.Custom,
	}
}

func siteView(site SiteMetadata) map[string]any {
	return map[string]any{
		"name": site.Name,
		"url":  site.BaseURL,
		"data": site.Data,
	}
}

func collectionsView(collections Collections, views map[*PageData]map[string]any) map[string]any {
	project := func(pages []*PageData) []map[string]any {
		out := make([]map[string]any, 0, len(pages))
		for _, page := range pages {
			out = append(out, views[page])
		}
		return out
	}
	tags := make(map[string]any, len(collections.Tags))
	for tag, pages := range collections.Tags {
		tags[tag] = project(pages)
	}
	sections := func(groups []LLMSSection) []map[string]any {
		out := make([]map[string]any, 0, len(groups))
		for _, group := range groups {
			out = append(out, map[string]any{"title": group.Title, "items": project(group.Items)})
		}
		return out
	}
	llms := map[string]any{
		"curated": sections(collections.LLMS.Curated),
		"rules":   sections(collections.LLMS.Rules),
	}
	return map[string]any{
		"all":        project(collections.All),
		"livePages":  project(collections.LivePages),
		"tags":       tags,
		"llmsHybrid": llms,
	}
}
