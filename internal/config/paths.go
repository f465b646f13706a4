package config

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "creditprep/internal/errors"
)

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved. Relative configuration paths are anchored here rather
// than the working directory, so a run behaves the same from any shell.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolvePaths rewrites every relative path in the configuration to an
// absolute one under the executable directory. Absolute paths pass through
// untouched, so command-line overrides keep whatever the caller gave.
func (c *Config) ResolvePaths() error {
	base, err := ExecutableDir()
	if err != nil {
		return apperrors.NewConfigError("resolving executable directory", err)
	}
	c.Data.Dir = resolveAgainst(base, c.Data.Dir)
	c.Output.Dir = resolveAgainst(base, c.Output.Dir)
	c.Logging.FilePath = resolveAgainst(base, c.Logging.FilePath)
	c.RunStore.Path = resolveAgainst(base, c.RunStore.Path)
	return nil
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates the directories a run writes into. Input
// directories are deliberately not created: a missing input directory is a
// missing-file error at load time, not something to paper over.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Output.Dir}
	if c.Logging.Output != "stdout" && c.Logging.FilePath != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	if c.RunStore.Enabled && c.RunStore.Path != "" {
		dirs = append(dirs, filepath.Dir(c.RunStore.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewConfigError(fmt.Sprintf("creating directory %s", dir), err)
		}
	}
	return nil
}

// TrainOutputPath returns the destination for the cleaned training table.
func (c *Config) TrainOutputPath() string {
	return filepath.Join(c.Output.Dir, c.Output.TrainFile)
}

// TestOutputPath returns the destination for the cleaned test table.
func (c *Config) TestOutputPath() string {
	return filepath.Join(c.Output.Dir, c.Output.TestFile)
}
