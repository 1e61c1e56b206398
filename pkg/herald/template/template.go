// Package template provides named message templates with simple {{variable}}
// placeholder substitution. There is no control flow; unresolved placeholders
// are reported so callers can fail processing instead of sending broken text.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Template is a named subject/body pair with placeholders.
type Template struct {
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Variables returns the distinct placeholder names used by the template.
func (t *Template) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, text := range []string{t.Subject, t.Body} {
		for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}

// Render substitutes variables into a single text fragment. Placeholders with
// no matching variable are left in place and returned as missing.
func Render(text string, variables map[string]any) (string, []string) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := variables[name]; ok {
			return fmt.Sprint(value)
		}
		missing = append(missing, name)
		return match
	})
	return rendered, missing
}

// Registry stores named templates. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds or replaces a template.
func (r *Registry) Register(tmpl *Template) error {
	if tmpl == nil || tmpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if strings.TrimSpace(tmpl.Body) == "" {
		return fmt.Errorf("template %q has an empty body", tmpl.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tmpl.Name] = tmpl
	return nil
}

// Get returns the template with the given name.
func (r *Registry) Get(name string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[name]
	return tmpl, ok
}

// Names returns the registered template names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// RenderTemplate renders a registered template with the given variables.
// Unresolved placeholders are an error: a template send must never leak
// raw placeholder text to a recipient.
func (r *Registry) RenderTemplate(name string, variables map[string]any) (subject, body string, err error) {
	tmpl, ok := r.Get(name)
	if !ok {
		return "", "", fmt.Errorf("template %q not found", name)
	}

	subject, missingSubject := Render(tmpl.Subject, variables)
	body, missingBody := Render(tmpl.Body, variables)
	if missing := append(missingSubject, missingBody...); len(missing) > 0 {
		return "", "", fmt.Errorf("template %q missing variables: %s", name, strings.Join(missing, ", "))
	}
	return subject, body, nil
}
