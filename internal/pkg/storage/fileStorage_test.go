package storage

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageName(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.jpg$`)

	tests := []struct {
		name string
		ext  string
	}{
		{name: "with dot", ext: ".jpg"},
		{name: "without dot", ext: "jpg"},
		{name: "upper case", ext: ".JPG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, pattern, StageName(tt.ext))
		})
	}

	assert.NotEqual(t, StageName(".png"), StageName(".png"))
}

func TestFileStorageRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	name := StageName(".png")
	require.NoError(t, s.Save(name, bytes.NewReader([]byte("pixels"))))
	assert.True(t, s.Exists(name))

	rc, err := s.Get(name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)

	require.NoError(t, s.Delete(name))
	assert.False(t, s.Exists(name))
	assert.Error(t, s.Delete(name))
}

func TestFileStorageRejectsPaths(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.png", "nested/file.png", "/abs.png"} {
		assert.Error(t, s.Save(name, bytes.NewReader(nil)), name)
		assert.False(t, s.Exists(name), name)
	}
}
