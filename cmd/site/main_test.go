package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/internal/checklist"
	checklistcmd "github.com/goliatone/go-site/internal/commands/checklist"
	sitecmd "github.com/goliatone/go-site/internal/commands/site"
	"github.com/goliatone/go-site/internal/generator"
)

type stubBuildHandler struct {
	last sitecmd.BuildSiteCommand
	err  error
}

func (s *stubBuildHandler) Execute(_ context.Context, msg sitecmd.BuildSiteCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		msg.ResultCallback(sitecmd.ResultEnvelope{
			Result: &generator.BuildResult{PagesBuilt: 2, PagesSkipped: 1, DryRun: msg.DryRun},
		})
	}
	return s.err
}

type stubPageHandler struct {
	last sitecmd.BuildPageCommand
}

func (s *stubPageHandler) Execute(_ context.Context, msg sitecmd.BuildPageCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		msg.ResultCallback(sitecmd.ResultEnvelope{
			Page: &generator.RenderedPage{Source: msg.Source, HTML: "<p>rendered</p>"},
		})
	}
	return nil
}

type stubSitemapHandler struct {
	calls int
}

func (s *stubSitemapHandler) Execute(context.Context, sitecmd.BuildSitemapCommand) error {
	s.calls++
	return nil
}

type stubExportHandler struct {
	last checklistcmd.ExportChecklistCommand
}

func (s *stubExportHandler) Execute(_ context.Context, msg checklistcmd.ExportChecklistCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		msg.ResultCallback(&checklist.ExportResult{Path: filepath.Join(msg.OutputDir, "Ops_report.md"), Bytes: 42})
	}
	return nil
}

type stubs struct {
	build   *stubBuildHandler
	page    *stubPageHandler
	sitemap *stubSitemapHandler
	export  *stubExportHandler
	cfg     site.Config
}

func withStubModule(t *testing.T) *stubs {
	t.Helper()
	s := &stubs{
		build:   &stubBuildHandler{},
		page:    &stubPageHandler{},
		sitemap: &stubSitemapHandler{},
		export:  &stubExportHandler{},
	}
	original := moduleBuilder
	moduleBuilder = func(cfg site.Config) (*moduleResources, error) {
		s.cfg = cfg
		return &moduleResources{
			handlers: handlerSet{
				build:   s.build,
				page:    s.page,
				sitemap: s.sitemap,
				export:  s.export,
			},
		}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })
	return s
}

func TestRunBuildForwardsFlags(t *testing.T) {
	s := withStubModule(t)
	var out bytes.Buffer

	if err := run([]string{"build", "--dry-run", "--drafts"}, &out); err != nil {
		t.Fatalf("run build: %v", err)
	}
	if !s.build.last.DryRun || !s.build.last.IncludeDrafts {
		t.Fatalf("expected flags to propagate, got %+v", s.build.last)
	}
	if !strings.Contains(out.String(), "rendered (dry run) 2 pages, skipped 1") {
		t.Fatalf("expected build summary, got %q", out.String())
	}
}

func TestRunBuildPropagatesErrors(t *testing.T) {
	s := withStubModule(t)
	s.build.err = errors.New("boom")

	err := run([]string{"build"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected propagated error, got %v", err)
	}
}

func TestRunRenderPrintsHTML(t *testing.T) {
	s := withStubModule(t)
	var out bytes.Buffer

	if err := run([]string{"render", "about.md"}, &out); err != nil {
		t.Fatalf("run render: %v", err)
	}
	if s.page.last.Source != "about.md" || !s.page.last.DryRun {
		t.Fatalf("expected dry run render of about.md, got %+v", s.page.last)
	}
	if !strings.Contains(out.String(), "<p>rendered</p>") {
		t.Fatalf("expected html output, got %q", out.String())
	}
}

func TestRunRenderRequiresFile(t *testing.T) {
	withStubModule(t)
	if err := run([]string{"render"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestRunSitemapUsesHandler(t *testing.T) {
	s := withStubModule(t)
	if err := run([]string{"sitemap"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run sitemap: %v", err)
	}
	if s.sitemap.calls != 1 {
		t.Fatalf("expected one sitemap call, got %d", s.sitemap.calls)
	}
}

func TestRunCleanHandlerMissing(t *testing.T) {
	withStubModule(t)
	err := run([]string{"clean"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "clean handler not configured") {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}

func TestRunAppliesContactOverrides(t *testing.T) {
	s := withStubModule(t)
	t.Setenv("CONTACT_TO", "owner@example.com")

	err := run([]string{"--contact-from", "noreply@example.com", "--site-name", "Vulpine", "sitemap"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.cfg.Contact.To != "owner@example.com" || s.cfg.Contact.From != "noreply@example.com" {
		t.Fatalf("expected contact overrides, got %+v", s.cfg.Contact)
	}
	if s.cfg.Site.Name != "Vulpine" || s.cfg.Contact.SiteName != "Vulpine" {
		t.Fatalf("expected site name override, got %q / %q", s.cfg.Site.Name, s.cfg.Contact.SiteName)
	}
}

func TestRunChecklistExportLoadsAnswers(t *testing.T) {
	s := withStubModule(t)
	dir := t.TempDir()
	answersPath := filepath.Join(dir, "answers.json")
	payload := `{"client": "Acme", "reviewer": "Jo", "items": {"backup": {"status": "compliant"}}}`
	if err := os.WriteFile(answersPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write answers: %v", err)
	}
	var out bytes.Buffer

	err := run([]string{"checklist", "export", "--file", "ops.json", "--answers", answersPath, "--format", "txt", "--out", dir}, &out)
	if err != nil {
		t.Fatalf("run export: %v", err)
	}
	got := s.export.last
	if got.File != "ops.json" || got.Format != "txt" || got.OutputDir != dir {
		t.Fatalf("unexpected export command %+v", got)
	}
	if got.Answers.Client != "Acme" || got.Answers.Items["backup"].Status != checklist.StatusCompliant {
		t.Fatalf("expected answers to be loaded, got %+v", got.Answers)
	}
	if !strings.Contains(out.String(), "(42 bytes)") {
		t.Fatalf("expected export summary, got %q", out.String())
	}
}

func TestServeMuxServesOutputAndContact(t *testing.T) {
	root := t.TempDir()
	cfg := site.DefaultConfig()
	cfg.Markdown.ContentDir = filepath.Join(root, "content")
	cfg.Generator.TemplatesDir = filepath.Join(root, "layouts")
	cfg.Generator.OutputDir = filepath.Join(root, "dist")
	cfg.Logging.Provider = "noop"
	cfg.Contact.To = "owner@example.com"
	cfg.Contact.From = "noreply@example.com"
	if err := os.MkdirAll(cfg.Generator.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Generator.OutputDir, "index.html"), []byte("<h1>Home</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	resources, err := buildModule(cfg)
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	t.Cleanup(resources.Close)
	mux := newServeMux(resources)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<h1>Home</h1>") {
		t.Fatalf("expected static index, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"service":"contact-worker"`) {
		t.Fatalf("expected contact health route, got %d %q", rec.Code, rec.Body.String())
	}
}
