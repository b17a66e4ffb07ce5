package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileGetter(t *testing.T) {
	get, err := CompileGetter(`
	m, ok := row.(map[string]interface{})
	if !ok {
		return nil
	}
	return m["first"].(string) + " " + m["last"].(string)
`)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", get(map[string]any{"first": "Ada", "last": "Lovelace"}))
	assert.Nil(t, get([]any{1}))
}

func TestCompileRender(t *testing.T) {
	render, err := CompileRender(`
	if mode == "display" {
		return "<b>" + strings.ToUpper(fmt.Sprint(data)) + "</b>"
	}
	return data
`)
	require.NoError(t, err)

	assert.Equal(t, "<b>BOB</b>", render("bob", "display", nil))
	assert.Equal(t, "bob", render("bob", "filter", nil))
}

func TestCompileErrors(t *testing.T) {
	_, err := CompileGetter(`return undefinedName`)
	assert.ErrorIs(t, err, ErrCompile)

	_, err = CompileRender(`this is not go`)
	assert.ErrorIs(t, err, ErrCompile)
}
