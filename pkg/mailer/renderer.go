package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
)

// Renderer interpolates data into named HTML templates resolved against a
// trusted template store. Template names come from the form registry, never
// from the request, so name resolution is not a path-traversal surface.
//
// html/template's contextual auto-escaping is the injection defense:
// submission data is attacker-controlled and the output is HTML.
type Renderer struct {
	fs    fs.FS
	dir   string
	cache map[string]*cachedTemplate

	mu sync.RWMutex
}

// cachedTemplate holds a parsed template for reuse across requests.
type cachedTemplate struct {
	metadata map[string]any
	tmpl     *template.Template
}

// NewRenderer creates a renderer resolving names at the root of fsys.
func NewRenderer(fsys fs.FS) *Renderer {
	return NewRendererWithDir(fsys, ".")
}

// NewRendererWithDir creates a renderer resolving names under dir.
func NewRendererWithDir(fsys fs.FS, dir string) *Renderer {
	if dir == "" {
		dir = "."
	}
	return &Renderer{
		fs:    fsys,
		dir:   dir,
		cache: make(map[string]*cachedTemplate),
	}
}

// Render executes the named template with data and returns the HTML.
// A missing template yields ErrTemplateNotFound; parse and interpolation
// failures yield ErrRenderFailed with the engine's message preserved.
func (r *Renderer) Render(name string, data any) (string, error) {
	cached, err := r.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := cached.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}
	return buf.String(), nil
}

// Metadata returns the frontmatter metadata of the named template.
func (r *Renderer) Metadata(name string) (map[string]any, error) {
	cached, err := r.getTemplate(name)
	if err != nil {
		return nil, err
	}
	return cached.metadata, nil
}

func (r *Renderer) getTemplate(name string) (*cachedTemplate, error) {
	r.mu.RLock()
	if cached, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := template.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}

	cached := &cachedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.cache[name] = cached
	return cached, nil
}
