// Package render expands {{ NAME }} placeholders in menu metadata.
package render

import (
	"regexp"
	"sort"
	"strings"
)

var (
	slugStrip      = regexp.MustCompile("[\"'#$%&+,/:;=?@\\[\\\\\\]^`{|}~()<>*!]")
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Renderer substitutes placeholders from a fixed mapping. It is built
// once per menu and never mutated afterwards; With returns a copy.
type Renderer struct {
	placeholders map[string]string
	keys         []string
	post         func(string) string
}

// New returns a renderer over a copy of placeholders
func New(placeholders map[string]string) *Renderer {
	r := &Renderer{placeholders: make(map[string]string, len(placeholders))}
	for k, v := range placeholders {
		r.placeholders[k] = v
	}
	r.keys = sortedKeys(r.placeholders)
	return r
}

// WithPostProcess returns a copy whose output goes through fn after substitution
func (r *Renderer) WithPostProcess(fn func(string) string) *Renderer {
	c := r.With(nil)
	c.post = fn
	return c
}

// With returns a copy extended with extra placeholders; extra wins on conflicts
func (r *Renderer) With(extra map[string]string) *Renderer {
	merged := make(map[string]string, len(r.placeholders)+len(extra))
	for k, v := range r.placeholders {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	c := New(merged)
	c.post = r.post
	return c
}

// Placeholders returns a copy of the mapping
func (r *Renderer) Placeholders() map[string]string {
	out := make(map[string]string, len(r.placeholders))
	for k, v := range r.placeholders {
		out[k] = v
	}
	return out
}

// Render replaces every "{{ NAME }}" with its value. Unknown
// placeholders are left untouched.
func (r *Renderer) Render(text string) string {
	if text == "" {
		return text
	}
	for _, k := range r.keys {
		text = strings.ReplaceAll(text, "{{ "+k+" }}", r.placeholders[k])
	}
	if r.post != nil {
		text = r.post(text)
	}
	return text
}

// RenderOptional renders *text, passing nil through
func (r *Renderer) RenderOptional(text *string, slug bool) *string {
	if text == nil {
		return nil
	}
	out := r.Render(*text)
	if slug {
		out = Slugify(out)
	}
	return &out
}

// RenderSlug renders then slugifies
func (r *Renderer) RenderSlug(text string) string {
	return Slugify(r.Render(text))
}

// RenderList renders each element; nil stays nil
func (r *Renderer) RenderList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = r.Render(item)
	}
	return out
}

// Slugify strips shell and path metacharacters and joins whitespace runs with "_"
func Slugify(text string) string {
	text = slugStrip.ReplaceAllString(text, "")
	return slugWhitespace.ReplaceAllString(text, "_")
}

// WindowsSeparators converts forward slashes to backslashes unless the
// string starts with "/", which marks a command-line switch.
func WindowsSeparators(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return strings.ReplaceAll(s, "/", `\`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
