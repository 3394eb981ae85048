package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

// WriteFiles writes each entry of files into dir, creating it if needed,
// and returns the written paths sorted. Names are validated so upstream
// titles cannot escape dir.
func WriteFiles(dir string, files map[string][]byte) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	names := make([]string, 0, len(files))
	for name := range files {
		if err := apierrors.ValidateFilename(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
