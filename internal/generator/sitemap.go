package generator

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultChangeFreq = "monthly"
	defaultPriority   = "0.5"
)

type sitemapEntry struct {
	Location   string
	LastMod    time.Time
	Priority   string
	ChangeFreq string
}

// buildSitemap renders entries deduplicated by location and sorted.
func buildSitemap(baseURL string, entries []sitemapEntry) string {
	base := sitemapBase(baseURL)

	unique := make([]sitemapEntry, 0, len(entries))
	seen := map[string]struct{}{}
	for _, entry := range entries {
		route := strings.TrimSpace(entry.Location)
		if route == "" {
			route = "/"
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		entry.Location = base + route
		if _, ok := seen[entry.Location]; ok {
			continue
		}
		seen[entry.Location] = struct{}{}
		unique = append(unique, entry)
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Location < unique[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range unique {
		builder.WriteString("  <url>\n")
		builder.WriteString("    <loc>")
		_ = xml.EscapeText(&builder, []byte(entry.Location))
		builder.WriteString("</loc>\n")
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", entry.ChangeFreq))
		builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", entry.Priority))
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", sitemapBase(baseURL)))
	}
	return builder.String()
}

func sitemapBase(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}
	return base
}

// resolveChangeFreq returns value when it is a sitemap keyword, else fallback.
func resolveChangeFreq(value, fallback string) string {
	for _, candidate := range []string{value, fallback} {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		switch candidate {
		case "always", "hourly", "daily", "weekly", "monthly", "yearly", "never":
			return candidate
		}
	}
	return defaultChangeFreq
}

// resolvePriority returns the first of value and fallback that parses as a
// number in [0,1], written as given.
func resolvePriority(value, fallback string) string {
	for _, candidate := range []string{value, fallback} {
		candidate = strings.TrimSpace(candidate)
		parsed, err := strconv.ParseFloat(candidate, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			continue
		}
		return candidate
	}
	return defaultPriority
}
