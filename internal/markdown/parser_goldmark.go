package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-site/internal/icontasks"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// GoldmarkParser renders page bodies with goldmark. It is safe for
// concurrent use.
type GoldmarkParser struct {
	defaultOptions interfaces.ParseOptions
	iconRules      icontasks.RuleSet
	iconPriority   int
	logger         interfaces.Logger
}

// ParserOption customises a GoldmarkParser.
type ParserOption func(*GoldmarkParser)

// WithIconRules replaces the rule set used by the icontasks extension.
func WithIconRules(rules icontasks.RuleSet) ParserOption {
	return func(p *GoldmarkParser) {
		p.iconRules = rules
	}
}

// WithIconPriority sets the goldmark priority of the icon task transformer
// and renderer. Zero keeps icontasks.DefaultPriority.
func WithIconPriority(priority int) ParserOption {
	return func(p *GoldmarkParser) {
		if priority != 0 {
			p.iconPriority = priority
		}
	}
}

// WithParserLogger attaches a logger forwarded to extensions.
func WithParserLogger(logger interfaces.Logger) ParserOption {
	return func(p *GoldmarkParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewGoldmarkParser constructs a parser. Empty extension lists resolve to GFM
// and the icon task markers.
func NewGoldmarkParser(defaults interfaces.ParseOptions, opts ...ParserOption) *GoldmarkParser {
	p := &GoldmarkParser{
		defaultOptions: defaults,
		iconRules:      icontasks.DefaultRuleSet(),
		iconPriority:   icontasks.DefaultPriority,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Parse renders markdown with the parser defaults.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaultOptions)
}

func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.newEngine(opts).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

// IconRules returns the rule set handed to the icontasks extension.
func (p *GoldmarkParser) IconRules() icontasks.RuleSet {
	return p.iconRules
}

// IconPriority returns the goldmark priority of the icon task extension.
func (p *GoldmarkParser) IconPriority() int {
	return p.iconPriority
}

// newEngine builds a goldmark instance for one conversion. Icon markup comes
// from its own node renderer, so safe mode drops raw HTML but keeps icons.
func (p *GoldmarkParser) newEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	var rendering []renderer.Option
	if opts.HardWraps {
		rendering = append(rendering, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendering = append(rendering, html.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendering...),
		goldmark.WithExtensions(p.extenders(opts.Extensions)...),
	)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// IconTasksExtension is the registry key for the icon task markers.
const IconTasksExtension = "icontasks"

var extensionAliases = map[string]string{
	"icon-tasks": IconTasksExtension,
	"icon_tasks": IconTasksExtension,
	"tables":     "table",
	"autolink":   "linkify",
}

// DefaultExtensions lists the extensions enabled when none are configured.
// GFM already includes linkify and task lists.
func DefaultExtensions() []string {
	return []string{"gfm", IconTasksExtension}
}

// KnownExtension reports whether name resolves to a registered extension.
func KnownExtension(name string) bool {
	key := canonicalExtension(name)
	if key == IconTasksExtension {
		return true
	}
	_, ok := extensionRegistry[key]
	return ok
}

func canonicalExtension(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := extensionAliases[key]; ok {
		return alias
	}
	return key
}

// extenders resolves names in order, skipping blanks, duplicates and names
// with no registered extension.
func (p *GoldmarkParser) extenders(names []string) []goldmark.Extender {
	if len(names) == 0 {
		names = DefaultExtensions()
	}
	var out []goldmark.Extender
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := canonicalExtension(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if key == IconTasksExtension {
			out = append(out, icontasks.New(
				icontasks.WithRules(p.iconRules),
				icontasks.WithPriority(p.iconPriority),
				icontasks.WithLogger(p.logger),
			))
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			out = append(out, ext)
		}
	}
	return out
}
