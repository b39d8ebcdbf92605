// Package render defines the rendering boundary consumed by the live actor
// core, plus a small default template renderer for tests and the demo server.
//
// Actors only ever see the Renderer interface; the template syntax and the
// diffing algorithm live outside the core.
package render

import (
	"github.com/djust-dev/djust/pkg/vdom"
)

// Result is the output of one render pass.
type Result struct {
	// HTML is the full rendered markup.
	HTML string

	// Snapshot is the virtual DOM tree parsed from HTML, used for diffing
	// against the previous render.
	Snapshot *vdom.Node
}

// Renderer renders a template reference against a state map.
//
// templateRef is opaque to the core: implementations may treat it as an
// inline template, a file path, or a registry key. Render must be a pure
// function of (templateRef, state) and safe for concurrent use — many actors
// share one Renderer.
type Renderer interface {
	Render(templateRef string, state map[string]any) (*Result, error)
}
