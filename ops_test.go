package blockfs_test

import (
	"errors"
	"testing"

	"github.com/blockfs-project/blockfs"
)

func TestMkdirAndTouchInRoot(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/dir"))
	mustOK(t, img.Touch("/file"))

	listing, err := img.Ls("/")
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("Ls returned %d entries, want 2", len(listing))
	}
	// Invariant 5: ls reports entries in insertion order.
	if listing[0].Name != "dir" || listing[0].Kind != blockfs.KindDirectory {
		t.Fatalf("entry 0 = %+v", listing[0])
	}
	if listing[1].Name != "file" || listing[1].Kind != blockfs.KindFile {
		t.Fatalf("entry 1 = %+v", listing[1])
	}
}

func TestMkdirDuplicateNameFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/a"))
	err := img.Mkdir("/a")
	assertCode(t, err, blockfs.CodeExists)
}

func TestMkdirMissingParentFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	err := img.Mkdir("/missing/child")
	if err == nil {
		t.Fatal("expected an error for a missing parent directory")
	}
}

func TestMkdirRootFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	err := img.Mkdir("/")
	assertCode(t, err, blockfs.CodeInvalidPath)
}

func TestNameLengthBoundary(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	if err := img.Mkdir("/" + repeat("a", 11)); err != nil {
		t.Fatalf("11-char name should succeed: %v", err)
	}
	err := img.Mkdir("/" + repeat("b", 12))
	assertCode(t, err, blockfs.CodeInvalidPath)
}

func TestTouchRmRestoresParent(t *testing.T) {
	// Invariant 7: touch(P) followed by rm(P) restores the parent directory
	// to a state equivalent to before.
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/keep"))
	before, err := img.Ls("/")
	if err != nil {
		t.Fatalf("Ls before: %v", err)
	}

	mustOK(t, img.Touch("/tmp"))
	mustOK(t, img.Rm("/tmp"))

	after, err := img.Ls("/")
	if err != nil {
		t.Fatalf("Ls after: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("Ls after rm has %d entries, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, after[i], before[i])
		}
	}
}

func TestRmCompactsMiddleEntry(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/a"))
	mustOK(t, img.Touch("/b"))
	mustOK(t, img.Touch("/c"))

	mustOK(t, img.Rm("/a"))

	listing, err := img.Ls("/")
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("Ls returned %d entries, want 2", len(listing))
	}
	names := map[string]bool{}
	for _, e := range listing {
		names[e.Name] = true
	}
	if !names["b"] || !names["c"] || names["a"] {
		t.Fatalf("unexpected listing after rm: %+v", listing)
	}
}

func TestRmNotFoundFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	err := img.Rm("/nope")
	assertCode(t, err, blockfs.CodeNotFound)
}

func TestRmdirDoesNotCheckEmptiness(t *testing.T) {
	// rmdir is a non-recursive alias for rm with no emptiness check;
	// removing a non-empty directory just drops its entry and frees its
	// (single) block, orphaning whatever it contained.
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/d"))
	mustOK(t, img.Touch("/d/child"))
	if err := img.Rmdir("/d"); err != nil {
		t.Fatalf("Rmdir of a non-empty directory should succeed: %v", err)
	}
}

func TestLsNotADirectoryFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	_, err := img.Ls("/f")
	if err == nil {
		t.Fatal("expected an error listing a file as a directory")
	}
}

func TestDirChainExtendsWhenBlockFull(t *testing.T) {
	// With the default 128-byte block size and 16-byte entries, a directory
	// block holds exactly 8 entries before it must extend its chain.
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/d"))
	for i := 0; i < 8; i++ {
		name := "/d/" + string(rune('a'+i))
		mustOK(t, img.Touch(name))
	}
	// The 9th entry forces the directory's single block to grow a second.
	mustOK(t, img.Touch("/d/overflow"))

	listing, err := img.Ls("/d")
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(listing) != 9 {
		t.Fatalf("Ls returned %d entries, want 9", len(listing))
	}
}

func assertCode(t *testing.T, err error, want blockfs.FailureCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with code %v, got nil", want)
	}
	var be *blockfs.Error
	if !errors.As(err, &be) {
		t.Fatalf("error %v is not a *blockfs.Error", err)
	}
	if be.Code != want {
		t.Fatalf("Code = %v, want %v", be.Code, want)
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s[0])
	}
	return string(out)
}
