package buildx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateDir returns the run-state directory holding side files (image-ID
// file, metadata file, materialized secrets). Overridable via the
// BUILDPUSH_STATE environment variable so CI runners can place it on a
// job-scoped volume.
func StateDir() string {
	if dir := os.Getenv("BUILDPUSH_STATE"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "buildpush")
}

// ImageIDFilePath returns the deterministic path for the --iidfile flag.
func ImageIDFilePath() string {
	return filepath.Join(StateDir(), "iidfile")
}

// MetadataFilePath returns the deterministic path for the --metadata-file flag.
func MetadataFilePath() string {
	return filepath.Join(StateDir(), "metadata-file")
}

// EnsureStateDir creates the run-state directory.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	return nil
}

// ReadImageID reads back the image digest written by the build.
func ReadImageID() (string, error) {
	data, err := os.ReadFile(ImageIDFilePath())
	if err != nil {
		return "", fmt.Errorf("reading image ID file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadMetadata reads back the build metadata file as a generic map.
func ReadMetadata() (map[string]interface{}, error) {
	data, err := os.ReadFile(MetadataFilePath())
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata file: %w", err)
	}
	return meta, nil
}
