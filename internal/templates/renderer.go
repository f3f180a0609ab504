// Package templates renders page layouts and inline templates with pongo2.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-site/pkg/interfaces"
)

var (
	// ErrTemplateDirInvalid indicates the layouts directory is missing or not a directory.
	ErrTemplateDirInvalid = errors.New("templates: layouts directory is invalid")
	// ErrNoLoader indicates a named template was requested without a layouts directory.
	ErrNoLoader = errors.New("templates: no layouts directory configured")
	// ErrFilterName indicates an empty filter name or nil filter function.
	ErrFilterName = errors.New("templates: filter name and function are required")
)

// Renderer implements interfaces.TemplateRenderer on top of a pongo2 template set.
type Renderer struct {
	set       *pongo2.TemplateSet
	hasLoader bool
	mu        sync.RWMutex
	globals   pongo2.Context
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// New returns a renderer loading layouts from dir. An empty dir yields a
// renderer that only supports RenderString.
func New(dir string) (*Renderer, error) {
	dir = strings.TrimSpace(dir)
	r := &Renderer{globals: pongo2.Context{}}
	if dir == "" {
		r.set = pongo2.NewSet("site", pongo2.MustNewLocalFileSystemLoader(""))
		return r, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateDirInvalid, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrTemplateDirInvalid, dir)
	}

	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateDirInvalid, dir, err)
	}
	r.set = pongo2.NewSet("site", loader)
	r.hasLoader = true
	return r, nil
}

// Render is an alias of RenderTemplate.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the layout called name, relative to the layouts directory.
func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !r.hasLoader {
		return "", ErrNoLoader
	}
	tpl, err := r.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("templates: load %q: %w", name, err)
	}
	return r.execute(tpl, data, out)
}

// RenderString compiles and executes an inline template.
func (r *Renderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("templates: compile inline: %w", err)
	}
	return r.execute(tpl, data, out)
}

// RegisterFilter installs fn as a pongo2 filter. pongo2 filters are process
// wide, so registering an existing name replaces it.
func (r *Renderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return ErrFilterName
	}
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		result, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the values visible to every template. It
// accepts maps keyed by string.
func (r *Renderer) GlobalContext(data any) error {
	values, ok := asMap(data)
	if !ok {
		return fmt.Errorf("templates: global context must be a map, got %T", data)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range values {
		r.globals[key] = value
	}
	return nil
}

func (r *Renderer) execute(tpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx := r.context(data)

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteWriter(ctx, writer); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *Renderer) context(data any) pongo2.Context {
	r.mu.RLock()
	ctx := make(pongo2.Context, len(r.globals)+4)
	for key, value := range r.globals {
		ctx[key] = value
	}
	r.mu.RUnlock()

	if values, ok := asMap(data); ok {
		for key, value := range values {
			ctx[key] = value
		}
	} else if data != nil {
		ctx["data"] = data
	}
	return ctx
}

func asMap(data any) (map[string]any, bool) {
	switch v := data.(type) {
	case pongo2.Context:
		return v, true
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}
