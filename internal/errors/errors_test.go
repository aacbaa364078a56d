package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigErrorWrapping(t *testing.T) {
	base := stderrors.New("missing text index")
	err := fmt.Errorf("load: %w", NewConfigError("functions.t", "", base))

	assert.True(t, IsConfig(err))
	assert.False(t, IsPerFile(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "functions.t")
}

func TestConfigErrorWithValue(t *testing.T) {
	err := NewConfigError("include", "[", stderrors.New("bad pattern"))
	assert.Equal(t, `config error for include (value "["): bad pattern`, err.Error())
}

func TestParseErrorMessage(t *testing.T) {
	err := NewParseError("src/a.ts", 3, 7, stderrors.New("syntax error"))
	assert.Equal(t, "parse error at src/a.ts:3:7: syntax error", err.Error())
	assert.True(t, IsPerFile(err))

	noPos := NewParseError("src/b.ts", 0, 0, stderrors.New("no tree"))
	assert.Equal(t, "parse error in src/b.ts: no tree", noPos.Error())
}

func TestFileErrorClassification(t *testing.T) {
	perm := NewFileError("read", "/x", fs.ErrPermission)
	assert.Equal(t, ErrorTypePermission, perm.Type)

	missing := NewFileError("read", "/y", fs.ErrNotExist)
	assert.Equal(t, ErrorTypeFileAccess, missing.Type)
	assert.ErrorIs(t, missing, fs.ErrNotExist)
	assert.True(t, IsPerFile(fmt.Errorf("wrapped: %w", missing)))
}

func TestMultiError(t *testing.T) {
	assert.NoError(t, NewMultiError([]error{nil, nil}))

	a := stderrors.New("a")
	single := NewMultiError([]error{nil, a})
	require.Error(t, single)
	assert.Equal(t, "a", single.Error())

	b := NewFileError("read", "/b", fs.ErrNotExist)
	multi := NewMultiError([]error{a, b})
	assert.ErrorIs(t, multi, a)
	assert.ErrorIs(t, multi, fs.ErrNotExist)
	assert.Contains(t, multi.Error(), "2 errors")
}
