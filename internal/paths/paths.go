// Package paths resolves the canonical locations inside a promoreel workspace.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace captures the directories a render touches. Intermediate assets in
// WorkDir are owned by the caller's cleanup policy, not by the render core.
type Workspace struct {
	Root       string
	ConfigFile string
	OutputDir  string
	WorkDir    string
	LogsDir    string
}

// Resolve determines the workspace root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (Workspace, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return Workspace{}, fmt.Errorf("resolve workspace root: %w", err)
	}

	return Workspace{
		Root:       root,
		ConfigFile: filepath.Join(root, "promoreel.yaml"),
		OutputDir:  filepath.Join(root, "out"),
		WorkDir:    filepath.Join(root, "work"),
		LogsDir:    filepath.Join(root, "logs"),
	}, nil
}

// EnsureDirs creates the output, work and logs directories.
func (w Workspace) EnsureDirs() error {
	for _, dir := range []string{w.OutputDir, w.WorkDir, w.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
