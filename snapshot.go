package blockfs

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// SnapshotFormat selects the compression codec used for a portable image
// backup. The on-disk image format itself is always a bit-exact uncompressed
// layout; only the backup stream produced by Snapshot/Restore is compressed.
type SnapshotFormat int

const (
	SnapshotZstd SnapshotFormat = iota
	SnapshotXZ
)

// Snapshot streams a compressed backup of the raw image file at path to w.
func Snapshot(path string, w io.Writer, format SnapshotFormat) error {
	f, err := os.Open(path)
	if err != nil {
		return wrapErr(CodeIOFailure, "open image for snapshot", err)
	}
	defer f.Close()

	switch format {
	case SnapshotZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return wrapErr(CodeIOFailure, "create zstd writer", err)
		}
		if _, err := io.Copy(zw, f); err != nil {
			zw.Close()
			return wrapErr(CodeIOFailure, "compress snapshot", err)
		}
		if err := zw.Close(); err != nil {
			return wrapErr(CodeIOFailure, "finalize zstd snapshot", err)
		}
		return nil
	case SnapshotXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return wrapErr(CodeIOFailure, "create xz writer", err)
		}
		if _, err := io.Copy(xw, f); err != nil {
			xw.Close()
			return wrapErr(CodeIOFailure, "compress snapshot", err)
		}
		if err := xw.Close(); err != nil {
			return wrapErr(CodeIOFailure, "finalize xz snapshot", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown snapshot format %d", format)
	}
}

// Restore decompresses a snapshot produced by Snapshot into a fresh image
// file at path, overwriting any existing file there.
func Restore(r io.Reader, path string, format SnapshotFormat) error {
	out, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return wrapErr(CodeIOFailure, "create restored image", err)
	}
	defer out.Close()

	switch format {
	case SnapshotZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return wrapErr(CodeIOFailure, "create zstd reader", err)
		}
		defer zr.Close()
		if _, err := io.Copy(out, zr); err != nil {
			return wrapErr(CodeIOFailure, "decompress snapshot", err)
		}
		return nil
	case SnapshotXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return wrapErr(CodeIOFailure, "create xz reader", err)
		}
		if _, err := io.Copy(out, xr); err != nil {
			return wrapErr(CodeIOFailure, "decompress snapshot", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown snapshot format %d", format)
	}
}
