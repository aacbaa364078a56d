package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/i18n-extract/internal/errors"
)

func TestDefault(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"gettext", "ngettext", "npgettext", "pgettext"}, r.Names())

	sig, ok := r.Lookup("npgettext")
	require.True(t, ok)
	assert.Equal(t, Signature{Name: "npgettext", Context: 0, Text: 1, Plural: 2}, sig)

	sig, ok = r.Lookup("gettext")
	require.True(t, ok)
	assert.False(t, sig.HasContext())
	assert.False(t, sig.HasPlural())

	_, ok = r.Lookup("printf")
	assert.False(t, ok)
}

func TestParseReplacesDefaults(t *testing.T) {
	r, err := Parse([]byte(`{"t":{"text":0}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	sig, ok := r.Lookup("t")
	require.True(t, ok)
	assert.Equal(t, 0, sig.Text)
	assert.Equal(t, NoIndex, sig.Context)

	_, ok = r.Lookup("gettext")
	assert.False(t, ok, "custom table replaces the defaults")
}

func TestParseYAML(t *testing.T) {
	r, err := Parse([]byte("tc:\n  context: 0\n  text: 1\n  plural: 2\n"))
	require.NoError(t, err)
	sig, ok := r.Lookup("tc")
	require.True(t, ok)
	assert.True(t, sig.HasContext())
	assert.True(t, sig.HasPlural())
	assert.Equal(t, 1, sig.Text)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing text":    `{"t":{"context":0}}`,
		"negative text":   `{"t":{"text":-1}}`,
		"negative plural": `{"t":{"text":0,"plural":-2}}`,
		"empty":           `{}`,
		"malformed":       `{"t":`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.IsConfig(err), "want ConfigError, got %T", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "functions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"__":{"text":0},"_n":{"text":0,"plural":1}}`), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"__", "_n"}, r.Names())

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.IsConfig(err))
}

func TestTableRoundTrip(t *testing.T) {
	r := Default()
	again, err := New(r.Table())
	require.NoError(t, err)
	assert.Equal(t, r.Signatures(), again.Signatures())
}
