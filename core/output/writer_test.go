package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"post.html", "post"},
		{"/var/data/my post.txt", "my_post"},
		{"drafts/archive.tar.gz", "archive_tar"},
		{"https://example.com/blog/hello-world/", "example_com_blog_hello-world"},
		{"https://example.com", "example_com"},
		{"http://localhost:8080/a", "localhost_8080_a"},
		{".", "document"},
		{"", "document"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.location))
		})
	}
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.Write("https://example.com/post", []byte("{}"), ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example_com_post.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
