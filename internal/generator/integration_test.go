package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-site/internal/generator"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/internal/templates"
)

func TestBuildMarkdownSiteEndToEnd(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "content")
	layouts := filepath.Join(root, "layouts")
	out := filepath.Join(root, "dist")

	writeFile(t, filepath.Join(content, "index.md"), "---\ntitle: Home\n---\n# Welcome\n")
	writeFile(t, filepath.Join(content, "checklist.md"), "---\ntitle: Checklist\ntags: [ops]\n---\n- [#] Backup completed\n- [!] Critical issue\n")
	writeFile(t, filepath.Join(layouts, "page.html"),
		"<title>{{ page.title }} | {{ site.name }}</title>\n"+
			"<nav>{% for p in collections.livePages %}<a href=\"{{ p.route }}\">{{ p.title }}</a>{% endfor %}</nav>\n"+
			"<main>{{ content|safe }}</main>\n")

	md, err := markdown.NewService(markdown.Config{BasePath: content, Pattern: "*.md", Recursive: true}, nil)
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}
	renderer, err := templates.New(layouts)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	svc := generator.NewService(generator.Config{
		OutputDir:       out,
		BaseURL:         "https://example.com",
		SiteName:        "Vulpine",
		DefaultLayout:   "page.html",
		GenerateSitemap: true,
	}, generator.Dependencies{
		Markdown: md,
		Renderer: renderer,
	})

	result, err := svc.Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 2 {
		t.Fatalf("expected 2 pages, got %d", result.PagesBuilt)
	}

	page := readAll(t, filepath.Join(out, "checklist", "index.html"))
	for _, want := range []string{
		"<title>Checklist | Vulpine</title>",
		`<a href="/">Home</a>`,
		`<li class="task-list-item icon-task-item"><i class="bi bi-circle text-muted"></i>Backup completed</li>`,
		`<li class="task-list-item icon-task-item icon-task-critical"><i class="bi bi-exclamation-triangle text-danger"></i>Critical issue</li>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected page to contain %s\n%s", want, page)
		}
	}

	sitemap := readAll(t, filepath.Join(out, "sitemap.xml"))
	if !strings.Contains(sitemap, "<loc>https://example.com/checklist/</loc>") {
		t.Fatalf("unexpected sitemap\n%s", sitemap)
	}
	if _, err := os.Stat(filepath.Join(out, "robots.txt")); !os.IsNotExist(err) {
		t.Fatalf("robots.txt should not be generated when disabled")
	}

}

func writeFile(tb testing.TB, path, content string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

func readAll(tb testing.TB, path string) string {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
