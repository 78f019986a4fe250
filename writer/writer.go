// Package writer implements the staged output Writer. Files accumulate in
// memory and reach disk only on Commit, so an aborted run leaves the output
// root untouched.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

type stagedFile struct {
	relPath string
	content string
}

// StagedWriter stages files under a fixed output root.
type StagedWriter struct {
	root   string
	staged []stagedFile
}

func NewStagedWriter(root string) *StagedWriter {
	return &StagedWriter{root: root}
}

// Stage records one file for the next Commit. Staging the same path twice
// keeps the later content.
func (w *StagedWriter) Stage(relPath, content string) {
	for i := range w.staged {
		if w.staged[i].relPath == relPath {
			w.staged[i].content = content
			return
		}
	}
	w.staged = append(w.staged, stagedFile{relPath: relPath, content: content})
}

// Staged returns the staged paths in stage order.
func (w *StagedWriter) Staged() []string {
	paths := make([]string, len(w.staged))
	for i, f := range w.staged {
		paths[i] = f.relPath
	}
	return paths
}

// Commit writes every staged file under the output root, creating
// directories as needed, and clears the stage on success.
func (w *StagedWriter) Commit() error {
	for _, f := range w.staged {
		target := filepath.Join(w.root, filepath.FromSlash(f.relPath))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create output directory for %s: %w", f.relPath, err)
		}
		if err := os.WriteFile(target, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.relPath, err)
		}
	}
	w.staged = nil
	return nil
}
