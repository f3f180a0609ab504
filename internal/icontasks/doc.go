// Package icontasks rewrites bracket markers such as `[#]`, `[#x]`, `[@]` and
// `[!]` at the start of list items into icon markup. It plugs into goldmark as
// an AST transformer that runs after block and inline parsing, plus a node
// renderer for the inserted icon nodes.
//
// The transform never fails a render: unmatched text, missing list items or an
// empty rule set simply leave the document untouched.
package icontasks
