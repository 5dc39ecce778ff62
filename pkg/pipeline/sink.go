package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
)

// WriteArtifacts writes each artifact to base + "." + format and returns the
// written paths in format order. base must pass ValidateOutputPath.
func WriteArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	if err := bferrors.ValidateOutputPath(base); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
