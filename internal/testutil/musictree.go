package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MusicTree creates the given relative files under a fresh temporary directory
// and returns its path. Each file gets a few bytes of filler content.
func MusicTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}
