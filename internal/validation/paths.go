package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrPathTooLong   = errors.New("path too long")
	ErrPathTraversal = errors.New("directory traversal not allowed")
	ErrOutsideBase   = errors.New("path not within allowed directories")
)

// ConfigDir is where roster looks for config.toml.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "roster")
}

// DataDir holds the debug log.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".roster")
}

func DefaultConfigPath() string { return filepath.Join(ConfigDir(), "config.toml") }

func DefaultLogPath() string { return filepath.Join(DataDir(), "roster.log") }

// PathValidator checks the files roster writes: the generated config and
// the debug log.
type PathValidator struct {
	// AllowedBaseDirs restricts paths to these directories. Empty allows any.
	AllowedBaseDirs    []string
	AllowHomeExpansion bool
	MaxPathLength      int
}

// NewPathValidator only accepts paths under the roster directories or the
// temp dir.
func NewPathValidator() *PathValidator {
	return &PathValidator{
		AllowedBaseDirs:    []string{ConfigDir(), DataDir(), os.TempDir()},
		AllowHomeExpansion: true,
		MaxPathLength:      4096,
	}
}

func NewPermissivePathValidator() *PathValidator {
	return &PathValidator{
		AllowHomeExpansion: true,
		MaxPathLength:      4096,
	}
}

// Clean expands a leading ~/, makes the path absolute and rejects control
// characters, ".." components and anything outside AllowedBaseDirs.
func (v *PathValidator) Clean(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("%w (max %d characters)", ErrPathTooLong, v.MaxPathLength)
	}
	for _, r := range path {
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}
	for _, part := range strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' }) {
		if part == ".." {
			return "", ErrPathTraversal
		}
	}

	switch {
	case strings.HasPrefix(path, "~/") && v.AllowHomeExpansion:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	case strings.HasPrefix(path, "~"):
		return "", fmt.Errorf("tilde expansion not allowed or invalid tilde usage")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	if err := v.withinBase(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// File is Clean plus a check that path is not an existing directory.
func (v *PathValidator) File(path string) (string, error) {
	cleaned, err := v.Clean(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(cleaned); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", cleaned)
	}
	return cleaned, nil
}

// EnsureParent validates a file path and creates its directory.
func (v *PathValidator) EnsureParent(path string) (string, error) {
	cleaned, err := v.File(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return cleaned, nil
}

func (v *PathValidator) withinBase(abs string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrOutsideBase, v.AllowedBaseDirs)
}
