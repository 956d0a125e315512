package compression

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is a per-invocation directory holding intermediate page images.
// It is owned by exactly one compression run and removed when the run ends.
type Workspace struct {
	root string
}

// NewWorkspace creates a uniquely named workspace under baseDir.
func NewWorkspace(baseDir string) (*Workspace, error) {
	root := filepath.Join(baseDir, uuid.New().String())
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// PagePath returns the image path for a zero-based page index. Names are
// zero padded so lexical order matches page order at assembly time.
func (w *Workspace) PagePath(index int) string {
	return filepath.Join(w.root, fmt.Sprintf("page_%04d.jpg", index))
}

// AssemblyPath returns the path the rebuilt PDF is written to before it is
// published to the requested output location.
func (w *Workspace) AssemblyPath() string {
	return filepath.Join(w.root, "assembled.pdf")
}

// Cleanup removes the workspace and everything in it.
func (w *Workspace) Cleanup() {
	os.RemoveAll(w.root)
}
