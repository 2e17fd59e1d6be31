package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "storage.yaml"), 0)
	require.NoError(t, err)

	_, ok := s.Get("anything")
	assert.False(t, ok)
	assert.Zero(t, s.Usage())
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.yaml")

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Set("glslpad.vertexShader", "void main() {\n  gl_Position = vec4(0.0);\n}\n"))
	require.NoError(t, s.Set("glslpad.fragmentShader", "void main() {}"))

	reopened, err := Open(path, 0)
	require.NoError(t, err)

	v, ok := reopened.Get("glslpad.vertexShader")
	require.True(t, ok)
	assert.Equal(t, "void main() {\n  gl_Position = vec4(0.0);\n}\n", v)

	f, ok := reopened.Get("glslpad.fragmentShader")
	require.True(t, ok)
	assert.Equal(t, "void main() {}", f)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestQuotaExceeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.yaml")
	s, err := Open(path, 32)
	require.NoError(t, err)

	require.NoError(t, s.Set("k", "small"))

	err = s.Set("big", strings.Repeat("x", 64))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "big", we.Key)

	// Failed write changes nothing, in memory or on disk.
	_, ok := s.Get("big")
	assert.False(t, ok)
	reopened, err := Open(path, 32)
	require.NoError(t, err)
	_, ok = reopened.Get("big")
	assert.False(t, ok)
}

func TestWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the rename fail.
	path := filepath.Join(dir, "storage.yaml")
	require.NoError(t, os.Mkdir(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0644))

	s := &Store{path: path, quota: DefaultQuota, values: map[string]string{}}
	err := s.Set("k", "v")

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "k", we.Key)
	assert.False(t, errors.Is(err, ErrQuotaExceeded))

	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0644))

	_, err := Open(path, 0)
	assert.Error(t, err)
}

func TestValuesReadBackExactly(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"leading newline", "\nvoid main() {}\n"},
		{"blank line run", "a\n\n\n\nb"},
		{"only newlines", "\n\n\n"},
		{"crlf", "void main() {\r\n}\r\n"},
		{"trailing spaces", "x = 1;   \n  \n"},
		{"leading spaces", "   indented"},
		{"tabs and quotes", "\t\"quoted\" 'single' \\ # not a comment"},
		{"yaml lookalikes", "- item\nkey: value\n---\n"},
		{"looks like bool", "true"},
		{"empty", ""},
		{"long line", strings.Repeat("float x = 1.0;  ", 40)},
		{"invalid utf8", "bad \xff\xfe bytes"},
	}

	path := filepath.Join(t.TempDir(), "storage.yaml")
	s, err := Open(path, 0)
	require.NoError(t, err)
	for _, tt := range tests {
		require.NoError(t, s.Set(tt.name, tt.value))
	}

	reopened, err := Open(path, 0)
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reopened.Get(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestSetAllIsAllOrNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.yaml")
	s, err := Open(path, 64)
	require.NoError(t, err)

	require.NoError(t, s.SetAll(map[string]string{"v": "v0", "f": "f0"}))

	err = s.SetAll(map[string]string{"v": "v1", "f": strings.Repeat("x", 100)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "f, v", we.Key)

	for _, store := range []*Store{s, mustOpen(t, path, 64)} {
		v, _ := store.Get("v")
		f, _ := store.Get("f")
		assert.Equal(t, "v0", v)
		assert.Equal(t, "f0", f)
	}

	require.NoError(t, s.SetAll(map[string]string{"v": "v2", "f": "f2"}))
	reopened := mustOpen(t, path, 64)
	v, _ := reopened.Get("v")
	f, _ := reopened.Get("f")
	assert.Equal(t, "v2", v)
	assert.Equal(t, "f2", f)
}

func mustOpen(t *testing.T, path string, quota int64) *Store {
	t.Helper()
	s, err := Open(path, quota)
	require.NoError(t, err)
	return s
}
