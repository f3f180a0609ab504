package icontasks

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// KindTaskIcon is the node kind of TaskIcon.
var KindTaskIcon = ast.NewNodeKind("TaskIcon")

// TaskIcon is an inline node holding the icon markup that replaced a marker.
type TaskIcon struct {
	ast.BaseInline
	Marker  string
	Checked bool
	Markup  []byte
}

// NewTaskIcon returns a TaskIcon for rule in the given state.
func NewTaskIcon(rule Rule, checked bool) *TaskIcon {
	markup := rule.Unchecked
	if checked {
		markup = rule.Checked
	}
	return &TaskIcon{
		Marker:  rule.Marker,
		Checked: checked,
		Markup:  []byte(markup),
	}
}

// Kind implements ast.Node.
func (n *TaskIcon) Kind() ast.NodeKind {
	return KindTaskIcon
}

// Dump implements ast.Node.
func (n *TaskIcon) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Marker":  n.Marker,
		"Checked": strconv.FormatBool(n.Checked),
		"Markup":  string(n.Markup),
	}, nil)
}

type iconRenderer struct{}

// NewIconRenderer returns the node renderer that writes TaskIcon markup verbatim.
// Icon markup comes from configuration, not from the document, so it is not
// subject to the unsafe HTML switch of the HTML renderer.
func NewIconRenderer() renderer.NodeRenderer {
	return iconRenderer{}
}

func (r iconRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTaskIcon, r.renderTaskIcon)
}

func (r iconRenderer) renderTaskIcon(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	icon, ok := node.(*TaskIcon)
	if !ok {
		return ast.WalkContinue, nil
	}
	_, _ = w.Write(icon.Markup)
	return ast.WalkSkipChildren, nil
}
