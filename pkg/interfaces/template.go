package interfaces

import "io"

// TemplateRenderer executes page layouts. Render and RenderTemplate take a
// layout name, RenderString an inline template; any writers passed as out
// receive a copy of the result.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
