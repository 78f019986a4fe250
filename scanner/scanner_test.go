package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanFindsRustFilesInStableOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.rs", "fn main() {}")
	writeFile(t, root, "api/user.rs", "struct User;")
	writeFile(t, root, "api/billing.rs", "struct Invoice;")
	writeFile(t, root, "README.md", "# nope")
	writeFile(t, root, "Cargo.toml", "[package]")

	files, err := NewRustFileProvider().Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "api/billing.rs", files[0].RelPath)
	assert.Equal(t, "api/user.rs", files[1].RelPath)
	assert.Equal(t, "main.rs", files[2].RelPath)

	assert.Equal(t, []string{"api"}, files[0].Segments)
	assert.Equal(t, "billing", files[0].Name)
	assert.Equal(t, "struct Invoice;", string(files[0].Content))
	assert.Nil(t, files[2].Segments)
}

func TestScanSkipsBuildAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.rs", "")
	writeFile(t, root, "target/debug/build.rs", "")
	writeFile(t, root, ".git/hook.rs", "")
	writeFile(t, root, "node_modules/pkg/index.rs", "")

	files, err := NewRustFileProvider().Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "lib.rs", files[0].RelPath)
}

func TestScanHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\nscratch.rs\n")
	writeFile(t, root, "lib.rs", "")
	writeFile(t, root, "scratch.rs", "")
	writeFile(t, root, "generated/bindings.rs", "")

	files, err := NewRustFileProvider().Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "lib.rs", files[0].RelPath)
}

func TestScanUnreadableRootIsFatal(t *testing.T) {
	_, err := NewRustFileProvider().Scan(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScanRootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.rs", "")

	_, err := NewRustFileProvider().Scan(filepath.Join(root, "file.rs"))
	assert.Error(t, err)
}
