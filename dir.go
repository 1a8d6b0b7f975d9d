package blockfs

// dirIterator walks the fixed-width directory entries packed into a chain
// of blocks, transparently following the allocation table's next-links
// when a block's entries run out.
type dirIterator struct {
	img *Image

	block  uint16
	buf    []byte
	offset int

	reachedEOF bool

	// entryBlock/entryOffset record where the entry most recently returned
	// by next() started, i.e. the pre-advance position. rm's compaction step
	// needs this exact position to overwrite the right slot.
	entryBlock  uint16
	entryOffset int
}

func (img *Image) newDirIterator(start uint16) (*dirIterator, error) {
	buf, err := img.readBlock(start)
	if err != nil {
		return nil, err
	}
	return &dirIterator{img: img, block: start, buf: buf, offset: 0}, nil
}

// next returns the next directory entry, or (nil, nil) once iteration is
// exhausted. Callers must check reachedEOF afterward to tell the two
// exhaustion cases apart:
//   - reachedEOF == false: an END-OF-DIRECTORY sentinel (type 0) was found
//     at (it.block, it.offset); that is the insertion point for a new entry.
//   - reachedEOF == true: the block chain itself ran out; a new block must
//     be linked after it.block before an entry can be inserted.
func (it *dirIterator) next() (*dirEntry, error) {
	blockSize := int(it.img.header.BlockSize)

	if it.offset >= blockSize {
		nb := it.img.at.getNext(it.block)
		if nb == eofBlock {
			it.reachedEOF = true
			return nil, nil
		}
		if nb == unusedBlock {
			return nil, newErr(CodeBadImage, "directory chain runs into an unused block")
		}
		buf, err := it.img.readBlock(nb)
		if err != nil {
			return nil, err
		}
		it.block = nb
		it.buf = buf
		it.offset = 0
	}

	e, err := decodeDirEntry(it.buf[it.offset : it.offset+dirEntrySize])
	if err != nil {
		return nil, err
	}
	if e.Type == entryEnd {
		return nil, nil
	}

	it.entryBlock = it.block
	it.entryOffset = it.offset
	it.offset += dirEntrySize
	return &e, nil
}
