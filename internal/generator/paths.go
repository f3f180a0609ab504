package generator

import (
	"path"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-site/pkg/interfaces"
)

// routeFor resolves the public route of a document. A permalink wins, then the
// slug (kept inside the source directory), then the file path itself:
// about.md becomes /about/ and index.md becomes /.
func routeFor(doc *interfaces.Document) string {
	if doc == nil {
		return "/"
	}
	if permalink := strings.TrimSpace(doc.FrontMatter.Permalink); permalink != "" {
		return normalizeRoute(permalink)
	}

	source := path.Clean("/" + strings.TrimSpace(doc.FilePath))
	dir := path.Dir(source)
	base := strings.TrimSuffix(path.Base(source), path.Ext(source))

	if custom := strings.TrimSpace(doc.FrontMatter.Slug); custom != "" {
		base = custom
	} else if base == "index" {
		base = ""
	}

	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		if segment != "" {
			segments = append(segments, slugSegment(segment))
		}
	}
	if base != "" {
		segments = append(segments, slugSegment(base))
	}
	return normalizeRoute("/" + strings.Join(segments, "/"))
}

// normalizeRoute forces a leading slash, cleans dot segments, and adds a
// trailing slash to extension-less routes.
func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	clean := path.Clean("/" + strings.TrimLeft(route, "/"))
	if clean == "/" {
		return "/"
	}
	if path.Ext(clean) != "" {
		return clean
	}
	return clean + "/"
}

// buildOutputPath maps a route to a file relative to the output directory.
func buildOutputPath(route string) string {
	route = normalizeRoute(route)
	clean := strings.Trim(route, "/")
	if clean == "" {
		return "index.html"
	}
	if path.Ext(clean) != "" {
		return clean
	}
	return path.Join(clean, "index.html")
}

func slugSegment(segment string) string {
	normalized, err := slug.Normalize(segment)
	if err != nil || normalized == "" {
		return segment
	}
	return normalized
}
