package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		state  map[string]any
		want   string
	}{
		{
			name:   "single key",
			source: "<span>count={{ count }}</span>",
			state:  map[string]any{"count": 5},
			want:   "<span>count=5</span>",
		},
		{
			name:   "multiple keys",
			source: "<p>{{ a }}-{{ b }}</p>",
			state:  map[string]any{"a": "x", "b": 2},
			want:   "<p>x-2</p>",
		},
		{
			name:   "unknown key renders empty",
			source: "<p>{{ missing }}</p>",
			state:  map[string]any{},
			want:   "<p></p>",
		},
		{
			name:   "nil value renders empty",
			source: "<p>{{ v }}</p>",
			state:  map[string]any{"v": nil},
			want:   "<p></p>",
		},
		{
			name:   "no placeholders",
			source: "<hr>",
			state:  map[string]any{"x": 1},
			want:   "<hr>",
		},
		{
			name:   "unterminated placeholder left as-is",
			source: "<p>{{ open</p>",
			state:  map[string]any{"open": 1},
			want:   "<p>{{ open</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interpolate(tt.source, tt.state); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderInline(t *testing.T) {
	r := NewTemplateRenderer("")
	res, err := r.Render("<div>{{ name }}</div>", map[string]any{"name": "djust"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if res.HTML != "<div>djust</div>" {
		t.Errorf("unexpected html: %q", res.HTML)
	}
	if res.Snapshot == nil || res.Snapshot.Tag != "div" {
		t.Errorf("snapshot not parsed: %+v", res.Snapshot)
	}
}

func TestRenderFromDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.html")
	if err := os.WriteFile(path, []byte("<span>{{ count }}</span>"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewTemplateRenderer(dir)
	res, err := r.Render("counter.html", map[string]any{"count": 7})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if res.HTML != "<span>7</span>" {
		t.Errorf("unexpected html: %q", res.HTML)
	}

	// Second render hits the cache.
	res, err = r.Render("counter.html", map[string]any{"count": 8})
	if err != nil {
		t.Fatalf("cached render failed: %v", err)
	}
	if res.HTML != "<span>8</span>" {
		t.Errorf("unexpected cached html: %q", res.HTML)
	}
}

func TestRenderMissingFileFallsBackToInline(t *testing.T) {
	r := NewTemplateRenderer(t.TempDir())
	res, err := r.Render("nonexistent", map[string]any{})
	if err != nil {
		t.Fatalf("expected inline fallback, got error: %v", err)
	}
	if res.HTML != "nonexistent" {
		t.Errorf("unexpected html: %q", res.HTML)
	}
}
