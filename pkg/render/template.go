package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/djust-dev/djust/pkg/vdom"
)

// TemplateRenderer is the default Renderer: it substitutes `{{ key }}`
// placeholders with values from the state map. Unknown keys render as the
// empty string. If Dir is set and the template reference resolves to a file
// beneath it, the file contents are used; otherwise the reference itself is
// treated as an inline template.
type TemplateRenderer struct {
	// Dir is the optional template root. Template refs containing markup
	// are always treated as inline regardless of Dir.
	Dir string

	mu    sync.RWMutex
	cache map[string]string // ref -> template source
}

// NewTemplateRenderer creates a renderer loading templates from dir.
// An empty dir restricts the renderer to inline templates.
func NewTemplateRenderer(dir string) *TemplateRenderer {
	return &TemplateRenderer{Dir: dir, cache: make(map[string]string)}
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(templateRef string, state map[string]any) (*Result, error) {
	source, err := r.resolve(templateRef)
	if err != nil {
		return nil, err
	}
	html := interpolate(source, state)
	return &Result{HTML: html, Snapshot: vdom.Parse(html)}, nil
}

func (r *TemplateRenderer) resolve(ref string) (string, error) {
	if strings.Contains(ref, "<") {
		return ref, nil
	}
	if r.Dir == "" {
		return ref, nil
	}

	r.mu.RLock()
	source, ok := r.cache[ref]
	r.mu.RUnlock()
	if ok {
		return source, nil
	}

	path := filepath.Join(r.Dir, filepath.Clean("/"+ref)) // confine to Dir
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Not a file: fall back to inline interpretation.
			return ref, nil
		}
		return "", fmt.Errorf("render: reading template %q: %w", ref, err)
	}

	source = string(data)
	r.mu.Lock()
	r.cache[ref] = source
	r.mu.Unlock()
	return source, nil
}

// interpolate replaces {{ key }} placeholders with state values.
func interpolate(source string, state map[string]any) string {
	var sb strings.Builder
	for {
		open := strings.Index(source, "{{")
		if open < 0 {
			sb.WriteString(source)
			return sb.String()
		}
		close := strings.Index(source[open:], "}}")
		if close < 0 {
			sb.WriteString(source)
			return sb.String()
		}
		close += open

		sb.WriteString(source[:open])
		key := strings.TrimSpace(source[open+2 : close])
		if value, ok := state[key]; ok && value != nil {
			sb.WriteString(fmt.Sprint(value))
		}
		source = source[close+2:]
	}
}
