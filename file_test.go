package blockfs_test

import (
	"bytes"
	"testing"

	"github.com/blockfs-project/blockfs"
)

func TestFopenSecondOpenFailsBusy(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	mustOK(t, img.Fopen("/f"))
	err := img.Fopen("/f")
	assertCode(t, err, blockfs.CodeBusy)
}

func TestFopenDirectoryFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Mkdir("/d"))
	err := img.Fopen("/d")
	assertCode(t, err, blockfs.CodeNotAFile)
}

func TestFreadWithoutOpenFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	_, err := img.Fread(1)
	assertCode(t, err, blockfs.CodeNotOpen)
}

func TestFreadPastEndReturnsPartialDataAndError(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	mustOK(t, img.Fopen("/f"))
	mustOK(t, img.Fwrite([]byte("abc")))
	mustOK(t, img.Fclose())
	mustOK(t, img.Fopen("/f"))

	// No file length is stored, so a read only runs past the end once it
	// leaves the single 128-byte block: the whole block comes back, "abc"
	// followed by the block's zero bytes.
	got, err := img.Fread(200)
	assertCode(t, err, blockfs.CodeReadPastEnd)
	want := append([]byte("abc"), make([]byte, 125)...)
	if !bytes.Equal(got, want) {
		t.Fatalf("Fread partial data = %q, want %q", got, want)
	}
}

func TestFseekWithinWrittenRangeRoundTrips(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	mustOK(t, img.Fopen("/f"))
	mustOK(t, img.Fwrite([]byte("0123456789")))
	mustOK(t, img.Fclose())

	mustOK(t, img.Fopen("/f"))
	mustOK(t, img.Fseek(5))
	got, err := img.Fread(5)
	if err != nil {
		t.Fatalf("Fread: %v", err)
	}
	if string(got) != "56789" {
		t.Fatalf("Fread after seek = %q, want %q", got, "56789")
	}
}

func TestFseekBeyondAllocatedChainFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	mustOK(t, img.Fopen("/f"))
	mustOK(t, img.Fwrite([]byte("hi")))

	// The file occupies a single 128-byte block; seeking into a second,
	// never-allocated block must fail rather than silently extend the chain.
	err := img.Fseek(200)
	assertCode(t, err, blockfs.CodeOutOfRange)
}

func TestFwriteExtendsChainAcrossBlocks(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	mustOK(t, img.Fopen("/f"))

	payload := bytes.Repeat([]byte{'z'}, 300)
	mustOK(t, img.Fwrite(payload))
	mustOK(t, img.Fclose())

	mustOK(t, img.Fopen("/f"))
	got, err := img.Fread(300)
	if err != nil {
		t.Fatalf("Fread: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round-tripped payload does not match what was written")
	}
}

func TestFinfoReportsCursorState(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	mustOK(t, img.Touch("/f"))
	mustOK(t, img.Fopen("/f"))
	mustOK(t, img.Fwrite([]byte("hello")))

	info, err := img.Finfo()
	if err != nil {
		t.Fatalf("Finfo: %v", err)
	}
	if info.BlockIndex != 0 || info.Offset != 5 {
		t.Fatalf("Finfo = %+v, want BlockIndex=0 Offset=5", info)
	}
}

func TestFcloseWithoutOpenFails(t *testing.T) {
	path := newTestImage(t)
	img := openTestImage(t, path)
	defer img.Close()

	err := img.Fclose()
	assertCode(t, err, blockfs.CodeNotOpen)
}
