package blockfs_test

import (
	"testing"

	"github.com/blockfs-project/blockfs"
)

func TestPathTrailingSlashResolvesSameDirectory(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/a"))
	mustOK(t, img.Touch("/a/f"))

	withSlash, err := img.Ls("/a/")
	if err != nil {
		t.Fatalf("Ls with trailing slash: %v", err)
	}
	withoutSlash, err := img.Ls("/a")
	if err != nil {
		t.Fatalf("Ls without trailing slash: %v", err)
	}
	if len(withSlash) != 1 || len(withoutSlash) != 1 || withSlash[0] != withoutSlash[0] {
		t.Fatalf("trailing slash changed resolution: %+v vs %+v", withSlash, withoutSlash)
	}
}

func TestPathRelativeFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	err := img.Mkdir("relative")
	assertCode(t, err, blockfs.CodeInvalidPath)
}

func TestPathThroughFileFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	err := img.Mkdir("/f/child")
	assertCode(t, err, blockfs.CodeNotADirectory)
}

func TestPathMissingSegmentFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	_, err := img.Ls("/nowhere")
	assertCode(t, err, blockfs.CodeNotFound)
}

func TestMkdirAllSlashesRejectedAsRoot(t *testing.T) {
	// A path that is nothing but slashes names the root just as "/" does,
	// and must be rejected as a mutation target rather than falling through
	// to create a blank-named entry under root.
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	for _, p := range []string{"//", "///", "////"} {
		err := img.Mkdir(p)
		assertCode(t, err, blockfs.CodeInvalidPath)

		listing, lsErr := img.Ls("/")
		if lsErr != nil {
			t.Fatalf("Ls /: %v", lsErr)
		}
		if len(listing) != 0 {
			t.Fatalf("Mkdir(%q) left stray entries in root: %+v", p, listing)
		}
	}
}
