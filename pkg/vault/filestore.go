package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// OSStore is a local file-system implementation of Store rooted at a vault
// directory. Writes are atomic via a temporary file, and listing honors the
// configured ignore patterns.
type OSStore struct {
	root   string
	ignore []glob.Glob
}

// NewOSStore creates a store rooted at root, creating the directory if
// needed. ignorePatterns are glob patterns (matched against vault-relative
// paths) excluded from List results.
func NewOSStore(root string, ignorePatterns []string) (*OSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("vault: init root %s: %w", abs, err)
	}

	store := &OSStore{root: abs}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			slog.Debug("vault: skipping invalid ignore pattern", "pattern", pattern, "err", err)
			continue
		}
		store.ignore = append(store.ignore, g)
	}
	return store, nil
}

// Root returns the absolute vault root directory.
func (s *OSStore) Root() string {
	return s.root
}

// resolve maps a vault-relative path to an absolute one, rejecting anything
// that escapes the root.
func (s *OSStore) resolve(path string) (string, error) {
	if path == "" {
		path = "."
	}
	resolved := filepath.Join(s.root, filepath.FromSlash(path))
	if resolved != s.root && !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("vault: path traversal detected for %q", path)
	}
	return resolved, nil
}

func (s *OSStore) ignored(relPath string) bool {
	for _, g := range s.ignore {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

func (s *OSStore) Read(_ context.Context, path string) (string, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(resolved)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", path, err)
	}
	return string(b), nil
}

func (s *OSStore) Write(_ context.Context, path, content string) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return s.atomicWrite(resolved, path, content)
}

func (s *OSStore) Create(_ context.Context, path, content string) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err == nil {
		return ErrAlreadyExists
	}
	return s.atomicWrite(resolved, path, content)
}

// atomicWrite writes via a temporary file and rename so readers never
// observe a partially written document.
func (s *OSStore) atomicWrite(resolved, path, content string) error {
	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return fmt.Errorf("vault: write temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("vault: atomic rename %s: %w", path, err)
	}
	return nil
}

func (s *OSStore) Exists(_ context.Context, path string) (bool, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("vault: stat %s: %w", path, err)
	}
	return true, nil
}

func (s *OSStore) List(_ context.Context, dir string) ([]string, error) {
	resolved, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("vault: list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		relPath := strings.TrimPrefix(filepath.ToSlash(filepath.Join(dir, e.Name())), "./")
		if s.ignored(relPath) {
			continue
		}
		out = append(out, relPath)
	}
	return out, nil
}

func (s *OSStore) EnsureDir(_ context.Context, dir string) error {
	resolved, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(resolved, 0o750); err != nil {
		return fmt.Errorf("vault: ensure dir %s: %w", dir, err)
	}
	return nil
}
