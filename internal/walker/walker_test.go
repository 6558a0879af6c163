package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdataDir returns the absolute path to testdata/posts.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "unable to determine test file location")
	abs, err := filepath.Abs(filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "posts"))
	require.NoError(t, err)
	require.DirExists(t, abs)
	return abs
}

func relPaths(files []FileInfo) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestWalk_Includes(t *testing.T) {
	files, err := Walk(WalkerConfig{
		RootDir: testdataDir(t),
		Include: []string{"**/*.txt", "**/*.post"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2023/marathon-recap.post",
		"hello-world.txt",
		"untitled-note.txt",
	}, relPaths(files), "drafts are skipped by default")
}

func TestWalk_Drafts(t *testing.T) {
	files, err := Walk(WalkerConfig{
		RootDir: testdataDir(t),
		Include: []string{"**/*.txt"},
		Drafts:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts/wip.txt", "hello-world.txt", "untitled-note.txt"}, relPaths(files))
}

func TestWalk_Exclude(t *testing.T) {
	files, err := Walk(WalkerConfig{
		RootDir: testdataDir(t),
		Include: []string{"**/*.txt", "**/*.post"},
		Exclude: []string{"2023/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello-world.txt", "untitled-note.txt"}, relPaths(files))
}

func TestWalk_SkipsHidden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD.txt"), []byte("ref"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swap.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.txt"), []byte("x"), 0o644))

	files, err := Walk(WalkerConfig{RootDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"post.txt"}, relPaths(files))
}

func TestWalk_NoPatternsIncludesEverything(t *testing.T) {
	files, err := Walk(WalkerConfig{RootDir: testdataDir(t)})
	require.NoError(t, err)
	paths := relPaths(files)
	assert.Contains(t, paths, "README.md")
	assert.NotContains(t, paths, "node_modules/skip.txt", "default excluded dirs are skipped")
}

func TestWalk_FileInfoFields(t *testing.T) {
	files, err := Walk(WalkerConfig{RootDir: testdataDir(t), Include: []string{"hello-world.txt"}})
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.True(t, filepath.IsAbs(f.Path))
	assert.Positive(t, f.Size)
	assert.False(t, f.ModTime.IsZero())
	assert.Len(t, f.ContentHash, 64)
}

func TestWalk_SkipsBinaryAndLargeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.txt"), []byte{'a', 0, 'b'}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), make([]byte, 2048), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("fine"), 0o644))

	files, err := Walk(WalkerConfig{RootDir: dir, MaxFileSize: 1024})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok.txt"}, relPaths(files))
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := Walk(WalkerConfig{RootDir: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestFilterMatch(t *testing.T) {
	posts := Filter{Include: []string{"**/*.txt", "*.post"}, Exclude: []string{"archive/**"}}
	tests := []struct {
		path string
		want bool
	}{
		{"a/b/c.txt", true},
		{"c.txt", true},
		{"a/c.post", true},
		{"a/c.md", false},
		{"archive/old.txt", false},
		{".hidden.txt", false},
		{"notes/.hidden.post", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, posts.Match(tt.path), tt.path)
	}
	assert.True(t, Filter{}.Match("anything"))
}

func TestFilterSkipDir(t *testing.T) {
	assert.True(t, Filter{}.SkipDir(".git"))
	assert.True(t, Filter{}.SkipDir("node_modules"))
	assert.True(t, Filter{}.SkipDir("Drafts"))
	assert.True(t, Filter{}.SkipDir("_drafts"))
	assert.False(t, Filter{Drafts: true}.SkipDir("drafts"))
	assert.True(t, Filter{Drafts: true}.SkipDir(".obsidian"))
	assert.False(t, Filter{}.SkipDir("2023"))
}
