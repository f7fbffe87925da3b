package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledByDefault(t *testing.T) {
	assert.NotPanics(t, func() { Debug("ignored", "k", 1) })
}

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, true)
	t.Cleanup(func() { InitWriter(&buf, false) })

	assert.True(t, Enabled())
	Debug("Generated migration SQL", "schema", "Contact", "statements", 2)
	With("dialect", "sqlite").Info("applied")

	out := buf.String()
	assert.Contains(t, out, `msg="Generated migration SQL"`)
	assert.Contains(t, out, "schema=Contact")
	assert.Contains(t, out, "app=schemaforge")
	assert.Contains(t, out, "dialect=sqlite")

	InitWriter(&buf, false)
	buf.Reset()
	Error("dropped")
	assert.False(t, Enabled())
	assert.Empty(t, buf.String())
}
