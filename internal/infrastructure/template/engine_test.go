package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Substitutes(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Register("greeting", "Hello {{ name }}!"))
	out, err := e.Render("greeting", map[string]string{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!", out)
}

func TestRender_MissingVariableCollapsesToEmpty(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Register("greeting", "Hello {{ name }}!"))
	out, err := e.Render("greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello !", out)
	assert.NotContains(t, out, "{{")
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewEngine()
	_, err := e.Render("nope", nil)
	assert.ErrorContains(t, err, "not found")
}

func TestRegister_ParseError(t *testing.T) {
	e := NewEngine()
	err := e.Register("broken", "{% if %}")
	assert.Error(t, err)
}

func TestMissingVariables(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Register("x", "{{ a }} {{ b }} {{ a }}"))
	missing := e.MissingVariables("x", map[string]string{"a": "1"})
	assert.Equal(t, []string{"b"}, missing)
}

func TestDefaultDigestTemplateRegistered(t *testing.T) {
	e := NewEngine()
	out, err := e.Render(DefaultDigestTemplate, map[string]string{
		"recipient_name":       "Ada",
		"intro":                "Here is what's new.",
		"recent_posts_html":    "<ul><li>Post</li></ul>",
		"upcoming_events_html": "<ul><li>Event</li></ul>",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Hi Ada,")
	assert.Contains(t, out, "<li>Post</li>")
	assert.NotContains(t, out, "{{")
}
