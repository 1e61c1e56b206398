package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, missing := Render("Hello {{name}}, your code is {{code}}", map[string]any{
		"name": "Alice",
		"code": 1234,
	})
	assert.Equal(t, "Hello Alice, your code is 1234", out)
	assert.Empty(t, missing)
}

func TestRender_MissingVariables(t *testing.T) {
	out, missing := Render("Hi {{name}}, see {{link}}", map[string]any{"name": "Bob"})
	assert.Equal(t, "Hi Bob, see {{link}}", out)
	assert.Equal(t, []string{"link"}, missing)
}

func TestRender_WhitespaceInPlaceholder(t *testing.T) {
	out, missing := Render("{{ name }}", map[string]any{"name": "x"})
	assert.Equal(t, "x", out)
	assert.Empty(t, missing)
}

func TestTemplate_Variables(t *testing.T) {
	tmpl := &Template{
		Name:    "welcome",
		Subject: "Welcome {{name}}",
		Body:    "Hello {{name}}, your plan is {{plan}}.",
	}
	assert.ElementsMatch(t, []string{"name", "plan"}, tmpl.Variables())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(&Template{
		Name:    "welcome",
		Subject: "Welcome {{name}}",
		Body:    "Hello {{name}}!",
	}))

	subject, body, err := reg.RenderTemplate("welcome", map[string]any{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome Alice", subject)
	assert.Equal(t, "Hello Alice!", body)

	_, _, err = reg.RenderTemplate("welcome", nil)
	assert.Error(t, err, "missing variables must fail rendering")

	_, _, err = reg.RenderTemplate("nope", nil)
	assert.Error(t, err)

	assert.Error(t, reg.Register(&Template{Name: ""}))
	assert.Error(t, reg.Register(&Template{Name: "blank", Body: "   "}))
	assert.ElementsMatch(t, []string{"welcome"}, reg.Names())
}
