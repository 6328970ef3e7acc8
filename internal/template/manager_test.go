package template

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisz08/notif-svc/pkg/errors"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "greeting.tmpl", "Hello {{.name}}!")

	m := NewManager(dir, time.Minute)
	out, err := m.Render("greeting.tmpl", map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!", out)
}

func TestRenderTemplateNotFound(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)

	_, err := m.Render("missing.tmpl", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTemplateNotFound, errors.CodeOf(err))
}

func TestRenderParseError(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "broken.tmpl", "{{.name")

	m := NewManager(dir, time.Minute)
	_, err := m.Render("broken.tmpl", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTemplateRender, errors.CodeOf(err))
}

func TestRenderRejectsPathTraversal(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)

	_, err := m.Render("../secrets.tmpl", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTemplateNotFound, errors.CodeOf(err))
}

func TestRenderUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "cached.tmpl", "v1 {{.x}}")

	m := NewManager(dir, time.Minute)
	out, err := m.Render("cached.tmpl", map[string]interface{}{"x": "a"})
	require.NoError(t, err)
	assert.Equal(t, "v1 a", out)

	// Overwrite on disk; the cached parse must still serve within TTL.
	writeTemplate(t, dir, "cached.tmpl", "v2 {{.x}}")
	out, err = m.Render("cached.tmpl", map[string]interface{}{"x": "a"})
	require.NoError(t, err)
	assert.Equal(t, "v1 a", out)
}

func TestContentHashStable(t *testing.T) {
	h1 := ContentHash("same content")
	h2 := ContentHash("same content")
	h3 := ContentHash("different content")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestTemplateIDs(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.tmpl", "a")
	writeTemplate(t, dir, "b.tmpl", "b")
	writeTemplate(t, dir, "notes.txt", "ignored")

	m := NewManager(dir, time.Minute)
	ids, err := m.TemplateIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.tmpl", "b.tmpl"}, ids)
}
