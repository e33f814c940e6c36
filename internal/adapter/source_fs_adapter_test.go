package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	m "tracefix.dev/pkg/tracefix/internal/model"
)

func TestIsRustSource(t *testing.T) {
	require.True(t, IsRustSource("src/lib.rs"))
	require.True(t, IsRustSource("main.rs"))

	require.False(t, IsRustSource("build.rs"))
	require.False(t, IsRustSource("nested/build.rs"))
	require.False(t, IsRustSource("lib.rs.bak"))
	require.False(t, IsRustSource("README.md"))
}

func TestNormalizePatternPath(t *testing.T) {
	require.Equal(t, "src/lib.rs", NormalizePatternPath("./src/lib.rs"))
	require.Equal(t, "src/lib.rs", NormalizePatternPath("src/lib.rs"))
}

func TestLocalSourceFSAdapter_RoundTrip(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	dir := t.TempDir()

	path := m.Path(filepath.Join(dir, "lib.rs"))
	require.NoError(t, fs.WriteFile(path, []byte("fn main() {}\n"), 0o644))

	content, err := fs.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "fn main() {}\n", string(content))

	info, err := fs.FileInfo(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
}

func TestLocalSourceFSAdapter_WalkAndRelPath(t *testing.T) {
	fs := NewLocalSourceFSAdapter()
	dir := t.TempDir()

	nested := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "lib.rs"), []byte("fn main() {}\n"), 0o644))

	var seen []m.Path

	err := fs.Walk(m.Path(dir), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			seen = append(seen, fs.RelPath(m.Path(dir), m.Path(path)))
		}

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []m.Path{"src/lib.rs"}, seen)
}
