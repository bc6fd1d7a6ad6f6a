package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// Files reads generated project files.
type Files struct{}

// NewFiles creates a file reader for Wire dependency injection
func NewFiles() *Files {
	return &Files{}
}

// Exists reports whether rel exists under projectDir.
func (Files) Exists(projectDir, rel string) (bool, error) {
	_, err := os.Stat(filepath.Join(projectDir, filepath.FromSlash(rel)))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", rel, err)
}

// Read returns the contents of rel under projectDir.
func (Files) Read(projectDir, rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return string(data), nil
}

var _ usecase.ProjectFiles = Files{}
