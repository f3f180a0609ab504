package icontasks

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-site/pkg/interfaces"
)

// DefaultPriority places the transformer after goldmark's built-in transformers.
const DefaultPriority = 500

// Option configures an Extension.
type Option func(*Extension)

// WithRules replaces the default rule set.
func WithRules(rules RuleSet) Option {
	return func(e *Extension) {
		e.rules = rules
	}
}

// WithPriority overrides the transformer and renderer priority.
func WithPriority(priority int) Option {
	return func(e *Extension) {
		e.priority = priority
	}
}

// WithLogger attaches a logger used for debug output.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// Extension is a goldmark.Extender installing the icon task transformer.
type Extension struct {
	rules    RuleSet
	priority int
	logger   interfaces.Logger
}

var _ goldmark.Extender = (*Extension)(nil)

// New returns an Extension configured by opts.
func New(opts ...Option) *Extension {
	ext := &Extension{
		rules:    DefaultRuleSet(),
		priority: DefaultPriority,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ext)
		}
	}
	return ext
}

// Rules returns the rule set the extension applies.
func (e *Extension) Rules() RuleSet {
	return e.rules
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(NewTransformer(e.rules, e.logger), e.priority),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewIconRenderer(), e.priority),
	))
}
