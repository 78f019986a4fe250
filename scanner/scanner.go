// Package scanner finds Rust source files in a backend source tree.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/tauria/tauria-tsgen/analyzer/models"
)

var skipDirs = map[string]struct{}{
	"target":       {},
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"build":        {},
	"dist":         {},
}

// RustFileProvider implements contracts.FileProvider over the local
// filesystem.
type RustFileProvider struct{}

func NewRustFileProvider() *RustFileProvider {
	return &RustFileProvider{}
}

// Scan walks root and returns every readable .rs file in lexicographic path
// order, so one tree always yields one file sequence. Gitignored paths and
// common build directories are skipped. An unreadable root is fatal; an
// unreadable file under it is skipped.
func (p *RustFileProvider) Scan(root string) ([]*models.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open source tree %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source tree %q is not a directory", root)
	}

	gi := loadGitignore(root)
	var files []*models.SourceFile

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(name) != ".rs" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		files = append(files, &models.SourceFile{
			RelPath:  rel,
			Segments: pathSegments(rel),
			Name:     strings.TrimSuffix(name, ".rs"),
			Content:  content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	return files, nil
}

// pathSegments returns the directory chain of a slash-separated relative
// path, empty for files at the tree root.
func pathSegments(rel string) []string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
