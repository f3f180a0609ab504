package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrPageNotFound indicates BuildPage was asked for an unknown source file.
	ErrPageNotFound     = errors.New("generator: page not found")
	errRendererRequired = errors.New("generator: template renderer is required")
	errLayoutRequired   = errors.New("generator: layout is required for rendering")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildPage(ctx context.Context, source string, opts BuildOptions) (*RenderedPage, error)
	BuildSitemap(ctx context.Context) error
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir         string
	BaseURL           string
	SiteName          string
	SiteData          map[string]any
	DefaultLayout     string
	CleanBuild        bool
	GenerateSitemap   bool
	GenerateRobots    bool
	DefaultChangeFreq string
	DefaultPriority   string
	Workers           int

	// SitemapExcludeExact and SitemapExcludePrefixes drop routes from
	// livePages and the sitemap.
	SitemapExcludeExact    []string
	SitemapExcludePrefixes []string

	// LLMSFile points at the JSON rule sections for the llmsHybrid
	// collection. A missing file yields no rule sections.
	LLMSFile string
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	DryRun        bool
	IncludeDrafts bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	BuildID      string
	PagesBuilt   int
	PagesSkipped int
	Duration     time.Duration
	Rendered     []RenderedPage
	Diagnostics  []RenderDiagnostic
	Errors       []error
	DryRun       bool
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Markdown interfaces.MarkdownService
	Renderer interfaces.TemplateRenderer
	LastMod  LastModResolver
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	start := time.Now()
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger := logging.WithFields(s.logger, map[string]any{"build_id": buildCtx.BuildID})

	result := &BuildResult{BuildID: buildCtx.BuildID, DryRun: opts.DryRun}
	outcomes, err := s.renderAll(ctx, buildCtx)
	if err != nil {
		return result, err
	}

	var failures []error
	for _, outcome := range outcomes {
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			failures = append(failures, outcome.err)
			result.PagesSkipped++
			continue
		}
		result.PagesBuilt++
		result.Rendered = append(result.Rendered, outcome.page)
	}
	sortRendered(result.Rendered)

	writer := newArtifactWriter(s.cfg.OutputDir, opts.DryRun)
	failures = append(failures, s.publish(ctx, writer, buildCtx, result.Rendered)...)

	result.Duration = time.Since(start)
	if len(failures) > 0 {
		result.Errors = failures
		logger.Error("generator.build.failed", "pages_built", result.PagesBuilt, "errors", len(failures))
		return result, errors.Join(failures...)
	}
	logger.Info("generator.build.completed",
		"pages_built", result.PagesBuilt,
		"dry_run", opts.DryRun,
		"duration", result.Duration,
	)
	return result, nil
}

// publish writes pages and the crawler files. Every step runs even when an
// earlier one failed so a single bad write does not hide the others.
func (s *service) publish(ctx context.Context, writer artifactWriter, buildCtx *BuildContext, pages []RenderedPage) []error {
	var errs []error
	keep := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if s.cfg.CleanBuild {
		keep(writer.Clean(ctx))
	}
	keep(s.persistPages(ctx, writer, pages))
	if s.cfg.GenerateSitemap {
		keep(s.writeSitemap(ctx, writer, buildCtx))
	}
	if s.cfg.GenerateRobots {
		keep(s.writeRobots(ctx, writer, buildCtx))
	}
	return errs
}

func (s *service) BuildPage(ctx context.Context, source string, opts BuildOptions) (*RenderedPage, error) {
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	source = path.Clean(strings.TrimPrefix(strings.TrimSpace(source), "./"))

	for _, page := range buildCtx.Pages {
		if page.Document.FilePath != source {
			continue
		}
		outcome := s.renderPage(ctx, buildCtx, page, pageViews(buildCtx.Pages, buildCtx.Site.BaseURL))
		if outcome.err != nil {
			return nil, outcome.err
		}
		rendered := []RenderedPage{outcome.page}
		if err := s.persistPages(ctx, newArtifactWriter(s.cfg.OutputDir, opts.DryRun), rendered); err != nil {
			return nil, err
		}
		return &rendered[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPageNotFound, source)
}

func (s *service) BuildSitemap(ctx context.Context) error {
	buildCtx, err := s.loadContext(ctx, BuildOptions{})
	if err != nil {
		return err
	}
	return s.writeSitemap(ctx, newArtifactWriter(s.cfg.OutputDir, false), buildCtx)
}

func (s *service) Clean(ctx context.Context) error {
	return newArtifactWriter(s.cfg.OutputDir, false).Clean(ctx)
}

// renderAll renders every page on a bounded worker pool. Outcomes keep the
// page order of buildCtx.Pages.
func (s *service) renderAll(ctx context.Context, buildCtx *BuildContext) ([]renderOutcome, error) {
	pages := buildCtx.Pages
	views := pageViews(pages, buildCtx.Site.BaseURL)
	outcomes := make([]renderOutcome, len(pages))

	workers := s.workerCount(len(pages))
	if workers <= 1 {
		for i, page := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = s.renderPage(ctx, buildCtx, page, views)
		}
		return outcomes, nil
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = s.renderPage(ctx, buildCtx, pages[i], views)
			}
		}()
	}

	var err error
feed:
	for i := range pages {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *service) renderPage(
	ctx context.Context,
	buildCtx *BuildContext,
	page *PageData,
	views map[*PageData]map[string]any,
) renderOutcome {
	source := page.Document.FilePath
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{Source: source, Route: page.Route, Layout: page.Layout},
	}
	fail := func(err error) renderOutcome {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if strings.TrimSpace(page.Layout) == "" {
		return fail(fmt.Errorf("generator: page %s: %w", source, errLayoutRequired))
	}

	start := time.Now()
	html, err := s.deps.Renderer.RenderTemplate(page.Layout, templateData(buildCtx, page, views))
	outcome.diagnostic.Duration = time.Since(start)
	if err != nil {
		logging.WithPageContext(s.logger, source, page.Route).Warn("generator.render.failed", "error", err)
		return fail(fmt.Errorf("generator: render layout %q for %s: %w", page.Layout, source, err))
	}

	outcome.page = RenderedPage{
		Source:   source,
		Route:    page.Route,
		Output:   page.Output,
		Layout:   page.Layout,
		HTML:     html,
		Checksum: checksum(html),
		Duration: outcome.diagnostic.Duration,
	}
	return outcome
}

func (s *service) persistPages(ctx context.Context, writer artifactWriter, pages []RenderedPage) error {
	for i := range pages {
		req := writeFileRequest{
			Path:     pages[i].Output,
			Content:  strings.NewReader(pages[i].HTML),
			Category: categoryPage,
			Checksum: pages[i].Checksum,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeSitemap(ctx context.Context, writer artifactWriter, buildCtx *BuildContext) error {
	live := buildCtx.Collections.LivePages
	entries := make([]sitemapEntry, 0, len(live))
	for _, page := range live {
		fm := page.Document.FrontMatter
		entries = append(entries, sitemapEntry{
			Location:   page.Route,
			LastMod:    s.lastModified(ctx, page, buildCtx.GeneratedAt),
			ChangeFreq: resolveChangeFreq(fm.ChangeFreq, s.cfg.DefaultChangeFreq),
			Priority:   resolvePriority(fm.Priority, s.cfg.DefaultPriority),
		})
	}
	content := buildSitemap(buildCtx.Site.BaseURL, entries)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:     "sitemap.xml",
		Content:  strings.NewReader(content),
		Category: categorySitemap,
		Checksum: checksum(content),
	})
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter, buildCtx *BuildContext) error {
	content := buildRobots(buildCtx.Site.BaseURL, s.cfg.GenerateSitemap)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:     "robots.txt",
		Content:  strings.NewReader(content),
		Category: categoryRobots,
		Checksum: checksum(content),
	})
}

// workerCount defaults to one worker per CPU and never exceeds the page count.
func (s *service) workerCount(pages int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, pages))
}

func sortRendered(pages []RenderedPage) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Route < pages[j].Route
	})
}

func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPage(context.Context, string, BuildOptions) (*RenderedPage, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildSitemap(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
