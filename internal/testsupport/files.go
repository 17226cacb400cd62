package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// MarkerFolder creates a temp folder containing the named marker files.
func MarkerFolder(t testing.TB, markers ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range markers {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write marker %s: %v", name, err)
		}
	}
	return dir
}
