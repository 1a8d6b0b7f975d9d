package blockfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blockfs-project/blockfs"
)

// newTestImage formats a fresh default-sized (bs=128,bc=128) image under a
// per-test temp directory and returns its path.
func newTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img")
	if err := blockfs.Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return path
}

func openTestImage(t *testing.T, path string) *blockfs.Image {
	t.Helper()
	img, err := blockfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return img
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return data
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func truncateTo(path string, size int64) error {
	return os.Truncate(path, size)
}
