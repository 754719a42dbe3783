// Package template renders newsletter bodies with the Liquid template
// language. Rendering is lax: substitutions that are missing at render time
// collapse to empty strings, so no literal placeholder markers ever reach a
// recipient.
package template

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/osteele/liquid"
)

// DefaultDigestTemplate is the built-in broadcast template id.
const DefaultDigestTemplate = "newsletter_digest"

const digestBody = `<html><body>
<p>Hi {{ recipient_name }},</p>
<p>{{ intro }}</p>
{{ recent_posts_html }}
{{ upcoming_events_html }}
<p>Thanks for reading!</p>
</body></html>`

var variableRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)`)

// Engine compiles and renders named Liquid templates.
type Engine struct {
	engine    *liquid.Engine
	mu        sync.RWMutex
	templates map[string]*liquid.Template
	raw       map[string]string
}

// NewEngine seeds the engine with the built-in newsletter templates.
func NewEngine() *Engine {
	e := &Engine{
		engine:    liquid.NewEngine(),
		templates: make(map[string]*liquid.Template),
		raw:       make(map[string]string),
	}
	_ = e.Register(DefaultDigestTemplate, digestBody)
	return e
}

// Register adds or replaces a template definition.
func (e *Engine) Register(id, body string) error {
	tmpl, err := e.engine.ParseTemplate([]byte(body))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", id, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[id] = tmpl
	e.raw[id] = body
	return nil
}

// Render executes the template with the provided substitutions.
func (e *Engine) Render(id string, subs map[string]string) (string, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[id]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %s not found", id)
	}
	bindings := make(map[string]interface{}, len(subs))
	for k, v := range subs {
		bindings[k] = v
	}
	out, err := tmpl.Render(bindings)
	if err != nil {
		return "", fmt.Errorf("render template %s: %w", id, err)
	}
	return string(out), nil
}

// MissingVariables reports template variables that have no substitution.
// Used to warn before a broadcast; rendering itself never fails on these.
func (e *Engine) MissingVariables(id string, subs map[string]string) []string {
	e.mu.RLock()
	body, ok := e.raw[id]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var missing []string
	for _, m := range variableRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := subs[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
