package icontasks

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// maxPrefixBytes bounds how much leading text is inspected: bracket, a marker
// of up to four bytes, the checked x, the closing bracket and one whitespace
// rune of up to three bytes.
const maxPrefixBytes = 12

// Stats reports what a single pass changed.
type Stats struct {
	// Matched counts markers replaced with icon nodes.
	Matched int
	// Annotated counts list items that received a class.
	Annotated int
}

// Transformer rewrites marker prefixes in a parsed document. It holds no
// per-document state and can be shared between concurrent renders.
type Transformer struct {
	rules  RuleSet
	logger interfaces.Logger
}

var _ parser.ASTTransformer = (*Transformer)(nil)

// NewTransformer returns a transformer applying rules. A nil logger disables logging.
func NewTransformer(rules RuleSet, logger interfaces.Logger) *Transformer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Transformer{rules: rules, logger: logger}
}

// Transform implements parser.ASTTransformer.
func (t *Transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	stats := t.Apply(doc, reader.Source())
	if stats.Matched > 0 {
		t.logger.Debug("icontasks.transform", "matched", stats.Matched, "annotated", stats.Annotated)
	}
}

// listScope tracks a list item on the walk stack. A scope stops accepting
// classes once a nested list inside it has closed.
type listScope struct {
	item *ast.ListItem
	open bool
}

// Apply runs a single pass over root. Running it again over an already
// transformed tree is a no-op because matched markers have been removed.
func (t *Transformer) Apply(root ast.Node, source []byte) (stats Stats) {
	if root == nil || t.rules.Len() == 0 {
		return stats
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("icontasks.transform.recovered", "panic", r)
		}
	}()

	var stack []listScope
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.ListItem:
			if entering {
				stack = append(stack, listScope{item: node, open: true})
			} else if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			return ast.WalkContinue, nil
		case *ast.List:
			if !entering && len(stack) > 0 {
				stack[len(stack)-1].open = false
			}
			return ast.WalkContinue, nil
		}

		if !entering || !isInlineContainer(n) {
			return ast.WalkContinue, nil
		}

		rule, ok := t.rewrite(n, source)
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		stats.Matched++
		if len(stack) > 0 && stack[len(stack)-1].open {
			addClass(stack[len(stack)-1].item, rule.ItemClass)
			stats.Annotated++
		}
		return ast.WalkSkipChildren, nil
	})
	return stats
}

// rewrite replaces a marker prefix at the start of container, returning the
// matched rule.
func (t *Transformer) rewrite(container ast.Node, source []byte) (Rule, bool) {
	run, prefix := leadingText(container, source)
	if len(run) == 0 {
		return Rule{}, false
	}
	rule, checked, width, ok := t.rules.match(prefix)
	if !ok {
		return Rule{}, false
	}

	container.InsertBefore(container, run[0], NewTaskIcon(rule, checked))
	consume(container, run, width)
	return rule, true
}

// leadingText returns the run of text nodes opening container and up to
// maxPrefixBytes of their content. The parser may split "[#]" into several
// text nodes, so the run is inspected as a whole. The run ends at the first
// non-text node or line break.
func leadingText(container ast.Node, source []byte) ([]*ast.Text, []byte) {
	var (
		run    []*ast.Text
		prefix []byte
	)
	for n := container.FirstChild(); n != nil && len(prefix) < maxPrefixBytes; n = n.NextSibling() {
		txt, ok := n.(*ast.Text)
		if !ok || txt.Segment.Padding > 0 {
			break
		}
		run = append(run, txt)
		prefix = append(prefix, txt.Segment.Value(source)...)
		if txt.SoftLineBreak() || txt.HardLineBreak() {
			break
		}
	}
	return run, prefix
}

// consume drops width bytes from the front of run. Fully consumed nodes are
// removed unless they carry a line break, which must still be rendered.
func consume(parent ast.Node, run []*ast.Text, width int) {
	for _, txt := range run {
		if width <= 0 {
			return
		}
		size := txt.Segment.Stop - txt.Segment.Start
		take := width
		if take > size {
			take = size
		}
		width -= take
		txt.Segment = txt.Segment.WithStart(txt.Segment.Start + take)
		if take == size && !txt.SoftLineBreak() && !txt.HardLineBreak() {
			parent.RemoveChild(parent, txt)
		}
	}
}

func isInlineContainer(n ast.Node) bool {
	if n.Type() != ast.TypeBlock {
		return false
	}
	first := n.FirstChild()
	return first != nil && first.Type() == ast.TypeInline
}

// addClass merges class names into the node's class attribute, skipping names
// already present.
func addClass(n ast.Node, classes string) {
	if strings.TrimSpace(classes) == "" {
		return
	}
	var existing string
	if value, ok := n.AttributeString("class"); ok {
		switch v := value.(type) {
		case []byte:
			existing = string(v)
		case string:
			existing = v
		}
	}
	n.SetAttributeString("class", []byte(mergeClasses(existing, classes)))
}

func mergeClasses(existing, added string) string {
	names := strings.Fields(existing)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}
	}
	for _, name := range strings.Fields(added) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return strings.Join(names, " ")
}
