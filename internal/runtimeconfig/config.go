package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrSiteURLInvalid = errors.New("site config: site url must be an absolute http(s) url")
var ErrMarkdownContentDirRequired = errors.New("site config: markdown content directory is required")
var ErrIconRuleMarkerInvalid = errors.New("site config: icon task marker must be a single character")
var ErrIconRuleDuplicate = errors.New("site config: icon task marker declared twice")
var ErrIconRulesConflict = errors.New("site config: icon task rules and markers are mutually exclusive")
var ErrSitemapExcludeInvalid = errors.New("site config: sitemap exclusions must start with /")
var ErrGeneratorOutputDirRequired = errors.New("site config: generator output directory is required")
var ErrGeneratorPriorityInvalid = errors.New("site config: sitemap priority must be between 0.0 and 1.0")
var ErrGeneratorChangeFreqInvalid = errors.New("site config: sitemap changefreq is invalid")
var ErrContactTimeoutInvalid = errors.New("site config: contact timeout must be positive")
var ErrContactEndpointInvalid = errors.New("site config: contact endpoint must be an absolute url")
var ErrLoggingProviderUnknown = errors.New("site config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("site config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("site config: logging format is invalid")

// Config aggregates the runtime configuration of the site toolkit.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Markdown  MarkdownConfig  `yaml:"markdown"`
	Generator GeneratorConfig `yaml:"generator"`
	Contact   ContactConfig   `yaml:"contact"`
	Checklist ChecklistConfig `yaml:"checklist"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig holds global site metadata exposed to layouts.
type SiteConfig struct {
	Name string         `yaml:"name"`
	URL  string         `yaml:"url"`
	Data map[string]any `yaml:"data"`
}

// MarkdownConfig captures filesystem and parser behaviour for Markdown pages.
type MarkdownConfig struct {
	ContentDir string               `yaml:"content_dir"`
	Pattern    string               `yaml:"pattern"`
	Recursive  bool                 `yaml:"recursive"`
	Parser     MarkdownParserConfig `yaml:"parser"`
	IconTasks  IconTasksConfig      `yaml:"icon_tasks"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// IconTasksConfig controls the icon task list extension. Rules (ordered) or
// Markers (keyed by marker, matched in lexical order) replace the built-in
// markers. Extra then replaces or appends single markers on top of that base.
// A zero Priority keeps the extension default.
type IconTasksConfig struct {
	Enabled  bool                      `yaml:"enabled"`
	Priority int                       `yaml:"priority"`
	Rules    []IconRuleConfig          `yaml:"rules"`
	Markers  map[string]IconRuleConfig `yaml:"markers"`
	Extra    []IconRuleConfig          `yaml:"extra"`
}

// IconRuleConfig mirrors icontasks.Rule. Marker is ignored under Markers.
type IconRuleConfig struct {
	Marker    string `yaml:"marker"`
	Unchecked string `yaml:"unchecked"`
	Checked   string `yaml:"checked"`
	ItemClass string `yaml:"item_class"`
}

// GeneratorConfig captures behaviour for the static site build.
type GeneratorConfig struct {
	OutputDir         string `yaml:"output_dir"`
	TemplatesDir      string `yaml:"templates_dir"`
	DefaultLayout     string `yaml:"default_layout"`
	CleanBuild        bool   `yaml:"clean_build"`
	GenerateSitemap   bool   `yaml:"generate_sitemap"`
	GenerateRobots    bool   `yaml:"generate_robots"`
	GitLastMod        bool   `yaml:"git_lastmod"`
	DefaultChangeFreq string `yaml:"default_changefreq"`
	DefaultPriority   string `yaml:"default_priority"`

	// Routes matching exactly or by prefix stay out of livePages and the
	// sitemap. They are still rendered.
	SitemapExcludeExact    []string `yaml:"sitemap_exclude_exact"`
	SitemapExcludePrefixes []string `yaml:"sitemap_exclude_prefixes"`

	// LLMSFile holds the rule sections of the llmsHybrid collection.
	LLMSFile string `yaml:"llms_file"`
}

// ContactConfig configures the contact form endpoint and its mail relay.
type ContactConfig struct {
	To       string        `yaml:"to"`
	From     string        `yaml:"from"`
	SiteName string        `yaml:"site_name"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`

	// AllowedOrigin pins access-control-allow-origin. Empty echoes the
	// request origin.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// ChecklistConfig locates checklist definitions.
type ChecklistConfig struct {
	Root string `yaml:"root"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the defaults used when no config file is supplied.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name: "Website",
			URL:  "http://localhost:8080",
			Data: map[string]any{},
		},
		Markdown: MarkdownConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
			IconTasks: IconTasksConfig{
				Enabled: true,
			},
		},
		Generator: GeneratorConfig{
			OutputDir:         "dist",
			TemplatesDir:      "layouts",
			DefaultLayout:     "page.html",
			CleanBuild:        true,
			GenerateSitemap:   true,
			GenerateRobots:    true,
			GitLastMod:        true,
			DefaultChangeFreq: "monthly",
			DefaultPriority:   "0.5",
			LLMSFile:          "llms.json",
		},
		Contact: ContactConfig{
			SiteName: "Website",
			Endpoint: "https://api.mailchannels.net/tx/v1/send",
			Timeout:  10 * time.Second,
		},
		Checklist: ChecklistConfig{
			Root: "checklists",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "auto",
		},
	}
}

// Load reads a YAML config file on top of DefaultConfig. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("site config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("site config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if site := strings.TrimSpace(cfg.Site.URL); site != "" {
		parsed, err := url.Parse(site)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrSiteURLInvalid, site)
		}
	}
	if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrMarkdownContentDirRequired
	}
	if err := cfg.Markdown.IconTasks.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}
	for _, route := range append(slices.Clone(cfg.Generator.SitemapExcludeExact), cfg.Generator.SitemapExcludePrefixes...) {
		if !strings.HasPrefix(strings.TrimSpace(route), "/") {
			return fmt.Errorf("%w: %q", ErrSitemapExcludeInvalid, route)
		}
	}
	if priority := strings.TrimSpace(cfg.Generator.DefaultPriority); priority != "" {
		value, err := strconv.ParseFloat(priority, 64)
		if err != nil || value < 0 || value > 1 {
			return fmt.Errorf("%w: %s", ErrGeneratorPriorityInvalid, priority)
		}
	}
	if freq := strings.TrimSpace(cfg.Generator.DefaultChangeFreq); freq != "" && !IsChangeFreq(freq) {
		return fmt.Errorf("%w: %s", ErrGeneratorChangeFreqInvalid, freq)
	}
	if cfg.Contact.Timeout <= 0 {
		return ErrContactTimeoutInvalid
	}
	if endpoint := strings.TrimSpace(cfg.Contact.Endpoint); endpoint != "" {
		parsed, err := url.Parse(endpoint)
		if err != nil || !parsed.IsAbs() {
			return fmt.Errorf("%w: %s", ErrContactEndpointInvalid, endpoint)
		}
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func (cfg IconTasksConfig) validate() error {
	if len(cfg.Rules) > 0 && len(cfg.Markers) > 0 {
		return ErrIconRulesConflict
	}
	markers := make([]string, 0, len(cfg.Markers))
	for marker := range cfg.Markers {
		markers = append(markers, marker)
	}
	for _, rule := range cfg.Rules {
		markers = append(markers, rule.Marker)
	}
	if err := checkMarkers(markers); err != nil {
		return err
	}
	extra := make([]string, 0, len(cfg.Extra))
	for _, rule := range cfg.Extra {
		extra = append(extra, rule.Marker)
	}
	return checkMarkers(extra)
}

func checkMarkers(markers []string) error {
	seen := make(map[string]struct{}, len(markers))
	for _, marker := range markers {
		if len([]rune(marker)) != 1 {
			return fmt.Errorf("%w: %q", ErrIconRuleMarkerInvalid, marker)
		}
		if _, ok := seen[marker]; ok {
			return fmt.Errorf("%w: %q", ErrIconRuleDuplicate, marker)
		}
		seen[marker] = struct{}{}
	}
	return nil
}

// IsChangeFreq reports whether value is a sitemap changefreq keyword.
func IsChangeFreq(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "always", "hourly", "daily", "weekly", "monthly", "yearly", "never":
		return true
	default:
		return false
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty", "auto":
		return true
	default:
		return false
	}
}
