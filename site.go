package site

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-site/internal/checklist"
	"github.com/goliatone/go-site/internal/contact"
	"github.com/goliatone/go-site/internal/generator"
	"github.com/goliatone/go-site/internal/icontasks"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/logging/gologger"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/internal/templates"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// ChecklistService exports the checklist report service.
type ChecklistService = *checklist.Service

// ContactHandler exports the contact form HTTP handler.
type ContactHandler = *contact.Handler

// Module is the runtime façade of the site toolkit. It owns one instance of
// every service built from Config.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	logger    interfaces.Logger
	parser    *markdown.GoldmarkParser
	markdown  *markdown.Service
	renderer  *templates.Renderer
	generator generator.Service
	contact   *contact.Handler
	checklist *checklist.Service
}

// Option customises module construction.
type Option func(*options)

type options struct {
	provider    interfaces.LoggerProvider
	mailer      contact.Mailer
	lastMod     generator.LastModResolver
	markdownFS  fs.FS
	checklistFS fs.FS
}

// WithLoggerProvider replaces the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithMailer replaces the MailChannels client used by the contact handler.
func WithMailer(mailer contact.Mailer) Option {
	return func(o *options) {
		o.mailer = mailer
	}
}

// WithLastModResolver replaces the git backed sitemap lastmod lookup.
func WithLastModResolver(resolver generator.LastModResolver) Option {
	return func(o *options) {
		o.lastMod = resolver
	}
}

// WithMarkdownFS serves content from fsys instead of Markdown.ContentDir.
func WithMarkdownFS(fsys fs.FS) Option {
	return func(o *options) {
		o.markdownFS = fsys
	}
}

// WithChecklistFS serves checklist definitions from fsys instead of Checklist.Root.
func WithChecklistFS(fsys fs.FS) Option {
	return func(o *options) {
		o.checklistFS = fsys
	}
}

// New validates cfg and wires the module services.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	provider := o.provider
	if provider == nil {
		built, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		provider = built
	}

	m := &Module{
		cfg:      cfg,
		provider: provider,
		logger:   logging.ModuleLogger(provider, "site"),
	}

	if err := m.configureMarkdown(o); err != nil {
		return nil, err
	}
	if err := m.configureGenerator(o); err != nil {
		return nil, err
	}
	if err := m.configureContact(o); err != nil {
		return nil, err
	}
	if err := m.configureChecklist(o); err != nil {
		return nil, err
	}
	return m, nil
}

// Config returns the configuration the module was built from.
func (m *Module) Config() Config {
	return m.cfg
}

// LoggerProvider exposes the provider shared by every service.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.provider
}

// Parser returns the goldmark parser carrying the icon task rules.
func (m *Module) Parser() *markdown.GoldmarkParser {
	if m == nil {
		return nil
	}
	return m.parser
}

// Markdown returns the markdown service, or nil when the content directory
// does not exist.
func (m *Module) Markdown() interfaces.MarkdownService {
	if m == nil || m.markdown == nil {
		return nil
	}
	return m.markdown
}

// Templates returns the layout renderer.
func (m *Module) Templates() interfaces.TemplateRenderer {
	if m == nil || m.renderer == nil {
		return nil
	}
	return m.renderer
}

// Generator returns the static site generator. It is a disabled service when
// content or layouts are missing.
func (m *Module) Generator() GeneratorService {
	if m == nil || m.generator == nil {
		return generator.NewDisabledService()
	}
	return m.generator
}

// Contact returns the contact handler, or nil when no recipient and sender
// are configured.
func (m *Module) Contact() ContactHandler {
	if m == nil {
		return nil
	}
	return m.contact
}

// Checklists returns the checklist service.
func (m *Module) Checklists() ChecklistService {
	if m == nil {
		return nil
	}
	return m.checklist
}

func (m *Module) configureMarkdown(o *options) error {
	cfg := m.cfg.Markdown
	parserOpts := interfaces.ParseOptions{
		Extensions: markdownExtensions(cfg),
		HardWraps:  cfg.Parser.HardWraps,
		SafeMode:   cfg.Parser.SafeMode,
	}

	rules, err := iconRuleSet(cfg.IconTasks)
	if err != nil {
		return err
	}
	logger := logging.MarkdownLogger(m.provider)
	m.parser = markdown.NewGoldmarkParser(parserOpts,
		markdown.WithIconRules(rules),
		markdown.WithIconPriority(cfg.IconTasks.Priority),
		markdown.WithParserLogger(logger),
	)

	serviceOpts := []markdown.ServiceOption{markdown.WithLogger(logger)}
	if o.markdownFS != nil {
		serviceOpts = append(serviceOpts, markdown.WithFS(o.markdownFS))
	}
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.ContentDir,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
		Parser:    parserOpts,
	}, m.parser, serviceOpts...)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("site.markdown.content_missing", "content_dir", cfg.ContentDir)
			return nil
		}
		return err
	}
	m.markdown = svc
	return nil
}

func (m *Module) configureGenerator(o *options) error {
	cfg := m.cfg.Generator

	renderer, err := templates.New(cfg.TemplatesDir)
	if err != nil {
		if !errors.Is(err, templates.ErrTemplateDirInvalid) {
			return err
		}
		m.logger.Warn("site.generator.layouts_missing", "templates_dir", cfg.TemplatesDir)
		if renderer, err = templates.New(""); err != nil {
			return err
		}
		m.renderer = renderer
		m.generator = generator.NewDisabledService()
		return nil
	}
	m.renderer = renderer

	if m.markdown == nil {
		m.generator = generator.NewDisabledService()
		return nil
	}

	lastMod := o.lastMod
	if lastMod == nil && cfg.GitLastMod {
		lastMod = generator.NewGitLastMod(m.cfg.Markdown.ContentDir)
	}

	m.generator = generator.NewService(generator.Config{
		OutputDir:         cfg.OutputDir,
		BaseURL:           m.cfg.Site.URL,
		SiteName:          m.cfg.Site.Name,
		SiteData:          m.cfg.Site.Data,
		DefaultLayout:     cfg.DefaultLayout,
		CleanBuild:        cfg.CleanBuild,
		GenerateSitemap:   cfg.GenerateSitemap,
		GenerateRobots:    cfg.GenerateRobots,
		DefaultChangeFreq: cfg.DefaultChangeFreq,
		DefaultPriority:   cfg.DefaultPriority,

		SitemapExcludeExact:    cfg.SitemapExcludeExact,
		SitemapExcludePrefixes: cfg.SitemapExcludePrefixes,
		LLMSFile:               cfg.LLMSFile,
	}, generator.Dependencies{
		Markdown: m.markdown,
		Renderer: renderer,
		LastMod:  lastMod,
		Logger:   logging.GeneratorLogger(m.provider),
	})
	return nil
}

func (m *Module) configureContact(o *options) error {
	cfg := m.cfg.Contact
	if strings.TrimSpace(cfg.To) == "" || strings.TrimSpace(cfg.From) == "" {
		m.logger.Debug("site.contact.disabled")
		return nil
	}

	siteName := cfg.SiteName
	if strings.TrimSpace(siteName) == "" {
		siteName = m.cfg.Site.Name
	}
	handlerOpts := []contact.Option{
		contact.WithRenderer(m.renderer),
		contact.WithLogger(logging.ContactLogger(m.provider)),
	}
	if o.mailer != nil {
		handlerOpts = append(handlerOpts, contact.WithMailer(o.mailer))
	}
	handler, err := contact.NewHandler(contact.Config{
		To:            cfg.To,
		From:          cfg.From,
		SiteName:      siteName,
		Endpoint:      cfg.Endpoint,
		Timeout:       cfg.Timeout,
		AllowedOrigin: cfg.AllowedOrigin,
	}, handlerOpts...)
	if err != nil {
		return fmt.Errorf("site: configure contact handler: %w", err)
	}
	m.contact = handler
	return nil
}

func (m *Module) configureChecklist(o *options) error {
	serviceOpts := []checklist.ServiceOption{
		checklist.WithLogger(logging.ChecklistLogger(m.provider)),
	}
	if o.checklistFS != nil {
		serviceOpts = append(serviceOpts, checklist.WithFS(o.checklistFS))
	}
	svc, err := checklist.NewService(m.cfg.Checklist.Root, serviceOpts...)
	if err != nil {
		return fmt.Errorf("site: configure checklist service: %w", err)
	}
	m.checklist = svc
	return nil
}

func buildLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "noop":
		return nil, nil
	default:
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
}

// markdownExtensions resolves the configured extension list, removing the icon
// markers when they are switched off.
func markdownExtensions(cfg MarkdownConfig) []string {
	names := cfg.Parser.Extensions
	if len(names) == 0 {
		names = markdown.DefaultExtensions()
	}
	out := make([]string, 0, len(names)+1)
	hasIcons := false
	for _, name := range names {
		if isIconExtension(name) {
			if !cfg.IconTasks.Enabled {
				continue
			}
			hasIcons = true
		}
		out = append(out, name)
	}
	if cfg.IconTasks.Enabled && !hasIcons {
		out = append(out, markdown.IconTasksExtension)
	}
	return out
}

func isIconExtension(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case markdown.IconTasksExtension, "icon-tasks", "icon_tasks":
		return true
	}
	return false
}

// iconRuleSet resolves the base rules and layers Extra on top.
func iconRuleSet(cfg IconTasksConfig) (icontasks.RuleSet, error) {
	var (
		base icontasks.RuleSet
		err  error
	)
	switch {
	case len(cfg.Rules) > 0:
		base, err = icontasks.NewRuleSet(iconRules(cfg.Rules)...)
	case len(cfg.Markers) > 0:
		keyed := make(map[string]icontasks.Rule, len(cfg.Markers))
		for marker, rule := range cfg.Markers {
			keyed[marker] = iconRule(rule)
		}
		base, err = icontasks.RuleSetFromMap(keyed)
	default:
		base = icontasks.DefaultRuleSet()
	}
	if err != nil {
		return icontasks.RuleSet{}, fmt.Errorf("site: icon task rules: %w", err)
	}
	if len(cfg.Extra) == 0 {
		return base, nil
	}
	set, err := base.Override(iconRules(cfg.Extra)...)
	if err != nil {
		return icontasks.RuleSet{}, fmt.Errorf("site: icon task extra rules: %w", err)
	}
	return set, nil
}

func iconRules(cfg []IconRuleConfig) []icontasks.Rule {
	rules := make([]icontasks.Rule, 0, len(cfg))
	for _, rule := range cfg {
		rules = append(rules, iconRule(rule))
	}
	return rules
}

func iconRule(cfg IconRuleConfig) icontasks.Rule {
	return icontasks.Rule{
		Marker:    cfg.Marker,
		Unchecked: cfg.Unchecked,
		Checked:   cfg.Checked,
		ItemClass: cfg.ItemClass,
	}
}
