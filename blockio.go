package blockfs

import "io"

// blockRegionOffset is the absolute file offset of the first data block,
// immediately following the header and the full allocation table.
func (img *Image) blockRegionOffset() int64 {
	return int64(headerSize) + int64(img.header.BlockCount)*4
}

func (img *Image) blockOffset(b uint16) int64 {
	return img.blockRegionOffset() + int64(b)*int64(img.header.BlockSize)
}

// readBlock reads one whole block. A short read is always an error.
func (img *Image) readBlock(b uint16) ([]byte, error) {
	buf := make([]byte, img.header.BlockSize)
	n, err := img.f.ReadAt(buf, img.blockOffset(b))
	if err != nil && err != io.EOF {
		return nil, wrapErr(CodeIOFailure, "read block", err)
	}
	if n < len(buf) {
		return nil, newErr(CodeShortRead, "short block read")
	}
	return buf, nil
}

// writeBlock writes one whole block; data must be exactly block_size bytes.
func (img *Image) writeBlock(b uint16, data []byte) error {
	if len(data) != int(img.header.BlockSize) {
		return newErr(CodeIOFailure, "block write length mismatch")
	}
	n, err := img.f.WriteAt(data, img.blockOffset(b))
	if err != nil {
		return wrapErr(CodeIOFailure, "write block", err)
	}
	if n < len(data) {
		return newErr(CodeShortWrite, "short block write")
	}
	return nil
}

// readAt reads length bytes from offset within block b.
func (img *Image) readAt(b uint16, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > int(img.header.BlockSize) {
		return nil, newErr(CodeIOFailure, "block span out of range")
	}
	buf := make([]byte, length)
	n, err := img.f.ReadAt(buf, img.blockOffset(b)+int64(offset))
	if err != nil && err != io.EOF {
		return nil, wrapErr(CodeIOFailure, "read block span", err)
	}
	if n < length {
		return nil, newErr(CodeShortRead, "short block span read")
	}
	return buf, nil
}

// writeAt writes data at offset within block b.
func (img *Image) writeAt(b uint16, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > int(img.header.BlockSize) {
		return newErr(CodeIOFailure, "block span out of range")
	}
	n, err := img.f.WriteAt(data, img.blockOffset(b)+int64(offset))
	if err != nil {
		return wrapErr(CodeIOFailure, "write block span", err)
	}
	if n < len(data) {
		return newErr(CodeShortWrite, "short block span write")
	}
	return nil
}
