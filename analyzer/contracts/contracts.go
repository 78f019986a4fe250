package contracts

import "github.com/tauria/tauria-tsgen/analyzer/models"

// IBridgeAnalyzer turns a scanned source tree into the semantic model.
type IBridgeAnalyzer interface {
	Analyze(files []*models.SourceFile) (*models.Model, error)
}

// FileProvider enumerates a source subtree. Implementations own all
// filesystem access; the analyzer core never touches a filesystem.
type FileProvider interface {
	// Scan returns the source files under root in a stable order.
	Scan(root string) ([]*models.SourceFile, error)
}

// Renderer is a pure function from a template name plus payload to text.
type Renderer interface {
	Render(template string, payload interface{}) (string, error)
}

// Writer commits generated artifacts. Staged writes are all-or-nothing
// across a run: nothing is committed when the run aborts.
type Writer interface {
	Stage(relPath string, content string)
	Commit() error
}
