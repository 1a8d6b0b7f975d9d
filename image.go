package blockfs

import (
	"io"
	"log"
	"os"
	"sync"
)

// Logger receives low-volume diagnostic trace lines at a handful of spots
// (image create, image open, FUSE mount). It defaults to
// discarding output, so library use stays silent unless a caller opts in.
var Logger = log.New(io.Discard, "blockfs: ", log.LstdFlags)

// Image is the exclusively-owned resource tying together an open image
// file, its in-memory allocation table, cached header values, and the
// optional open-file-handle state.
type Image struct {
	f      *os.File
	path   string
	header header
	at     *allocTable

	mu   sync.Mutex
	open *openFile
}

// Create formats a new image at path. Defaults to block size 128, block
// count 128 when the caller doesn't override them.
func Create(path string, opts ...CreateOption) error {
	cfg := createConfig{BlockSize: 128, BlockCount: 128}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BlockSize == 0 || cfg.BlockSize%16 != 0 {
		return newErr(CodeInvalidPath, "block size must be a nonzero multiple of 16")
	}
	if cfg.BlockCount == 0 {
		return newErr(CodeInvalidPath, "block count must be nonzero")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return wrapErr(CodeIOFailure, "create image", err)
	}
	defer f.Close()

	h := header{BlockSize: cfg.BlockSize, BlockCount: cfg.BlockCount}
	Logger.Printf("create %s bs=%d bc=%d", path, h.BlockSize, h.BlockCount)
	if _, err := f.Write(h.marshalBinary()); err != nil {
		return wrapErr(CodeIOFailure, "write header", err)
	}

	// Allocation table: block 0 is (EOF, EOF) — permanently reserved for
	// the root directory's first block — every other record is zero, i.e.
	// (UNUSED, UNUSED).
	atBuf := make([]byte, int(cfg.BlockCount)*4)
	atBuf[0], atBuf[1] = 0xFF, 0xFF
	atBuf[2], atBuf[3] = 0xFF, 0xFF
	if _, err := f.Write(atBuf); err != nil {
		return wrapErr(CodeIOFailure, "write allocation table", err)
	}

	blocks := make([]byte, int(cfg.BlockCount)*int(cfg.BlockSize))
	if _, err := f.Write(blocks); err != nil {
		return wrapErr(CodeIOFailure, "write block region", err)
	}
	return nil
}

// Open loads an existing image's header and allocation table into memory.
func Open(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, wrapErr(CodeIOFailure, "open image", err)
	}

	hbuf := make([]byte, headerSize)
	n, err := f.ReadAt(hbuf, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, wrapErr(CodeBadImage, "read header", err)
	}
	if n < headerSize {
		f.Close()
		return nil, newErr(CodeBadImage, "short header read")
	}

	h, err := decodeHeader(hbuf)
	if err != nil {
		f.Close()
		return nil, err
	}
	if h.BlockSize%16 != 0 {
		f.Close()
		return nil, newErr(CodeBadImage, "block size is not a multiple of 16")
	}
	Logger.Printf("open %s bs=%d bc=%d", path, h.BlockSize, h.BlockCount)

	at, err := loadAllocTable(f, h.BlockCount)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Image{f: f, path: path, header: h, at: at}, nil
}

// Close releases the allocation table and underlying file.
func (img *Image) Close() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.open = nil
	if err := img.f.Close(); err != nil {
		return wrapErr(CodeIOFailure, "close image", err)
	}
	return nil
}

// Sync flushes the underlying file. No operation implicitly calls this:
// durability is best-effort, and an explicit flush is exposed to callers
// rather than baked into every write-through.
func (img *Image) Sync() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if err := img.f.Sync(); err != nil {
		return wrapErr(CodeIOFailure, "sync image", err)
	}
	return nil
}

// ImageInfo reports header values and current free-block count.
type ImageInfo struct {
	BlockSize  uint16
	BlockCount uint16
	FreeBlocks int
}

// Info reports the image's header and free-block count.
func (img *Image) Info() ImageInfo {
	img.mu.Lock()
	defer img.mu.Unlock()

	free := 0
	for b := 1; b < len(img.at.entries); b++ {
		if img.at.entries[b].Next == unusedBlock {
			free++
		}
	}
	return ImageInfo{BlockSize: img.header.BlockSize, BlockCount: img.header.BlockCount, FreeBlocks: free}
}
