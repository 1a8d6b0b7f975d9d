package blockfs

// openFile holds the cursor state for the single file handle an image may
// have open at a time.
type openFile struct {
	startBlock   uint16
	currentBlock uint16
	currentIndex int
	offset       int
}

// FileInfo reports the open file handle's cursor state.
type FileInfo struct {
	StartBlock   uint16
	CurrentBlock uint16
	BlockIndex   int
	Offset       int
}

// Fopen opens the file named by path for positional I/O. At most one file
// may be open per image.
func (img *Image) Fopen(path string) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.open != nil {
		return newErr(CodeBusy, "a file is already open")
	}

	parentBlock, leaf, err := img.prelude(path)
	if err != nil {
		return err
	}

	it, err := img.newDirIterator(parentBlock)
	if err != nil {
		return err
	}

	var target uint16
	var found bool
	for {
		e, err := it.next()
		if err != nil {
			return err
		}
		if e == nil {
			break
		}
		if e.Name == leaf {
			if e.Type != entryFile {
				return newErr(CodeNotAFile, leaf+" is not a file")
			}
			target, found = e.Target, true
			break
		}
	}
	if !found {
		return newErr(CodeNotFound, "not found: "+leaf)
	}

	img.open = &openFile{startBlock: target, currentBlock: target, currentIndex: 0, offset: 0}
	return nil
}

// Fclose closes the currently open file.
func (img *Image) Fclose() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.open == nil {
		return newErr(CodeNotOpen, "no file open")
	}
	img.open = nil
	return nil
}

// Finfo reports the open file's cursor state.
func (img *Image) Finfo() (FileInfo, error) {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.open == nil {
		return FileInfo{}, newErr(CodeNotOpen, "no file open")
	}
	o := img.open
	return FileInfo{
		StartBlock:   o.startBlock,
		CurrentBlock: o.currentBlock,
		BlockIndex:   o.currentIndex,
		Offset:       o.offset,
	}, nil
}

// Fseek moves the cursor to an absolute byte position by walking existing
// chain links from the current position. It cannot extend the chain:
// seeking past the end of what is already allocated fails OutOfRange.
func (img *Image) Fseek(pos uint64) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.open == nil {
		return newErr(CodeNotOpen, "no file open")
	}

	bs := uint64(img.header.BlockSize)
	tgtIndex := int(pos / bs)
	tgtOffset := int(pos % bs)

	o := img.open
	for o.currentIndex < tgtIndex {
		nb := img.at.getNext(o.currentBlock)
		if nb == eofBlock {
			return newErr(CodeOutOfRange, "seek beyond end of chain")
		}
		o.currentBlock = nb
		o.currentIndex++
	}
	for o.currentIndex > tgtIndex {
		pb := img.at.getPrev(o.currentBlock)
		if pb == eofBlock {
			return newErr(CodeOutOfRange, "seek before start of chain")
		}
		o.currentBlock = pb
		o.currentIndex--
	}
	o.offset = tgtOffset
	return nil
}

// Fwrite writes buf starting at the cursor, extending the chain with newly
// allocated blocks as needed. Bytes already written before a NoSpace
// failure are not rolled back.
func (img *Image) Fwrite(buf []byte) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.open == nil {
		return newErr(CodeNotOpen, "no file open")
	}

	blockSize := int(img.header.BlockSize)
	o := img.open
	remaining := buf

	for len(remaining) > 0 {
		if o.offset >= blockSize {
			nb := img.at.getNext(o.currentBlock)
			if nb == eofBlock {
				newBlock, err := img.at.alloc(o.currentBlock, eofBlock)
				if err != nil {
					return err
				}
				if err := img.at.setNext(o.currentBlock, newBlock); err != nil {
					return err
				}
				nb = newBlock
			}
			o.currentBlock = nb
			o.currentIndex++
			o.offset = 0
		}

		n := blockSize - o.offset
		if n > len(remaining) {
			n = len(remaining)
		}
		if err := img.writeAt(o.currentBlock, o.offset, remaining[:n]); err != nil {
			return err
		}
		o.offset += n
		remaining = remaining[n:]
	}
	return nil
}

// Fread reads up to length bytes from the cursor. It never allocates:
// running into EOF with bytes still remaining fails ReadPastEnd, though the
// bytes already collected are still returned.
func (img *Image) Fread(length int) ([]byte, error) {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.open == nil {
		return nil, newErr(CodeNotOpen, "no file open")
	}
	if length < 0 {
		return nil, newErr(CodeOutOfRange, "negative read length")
	}

	blockSize := int(img.header.BlockSize)
	o := img.open
	out := make([]byte, 0, length)
	remaining := length

	for remaining > 0 {
		if o.offset >= blockSize {
			nb := img.at.getNext(o.currentBlock)
			if nb == eofBlock {
				return out, newErr(CodeReadPastEnd, "read past end of chain")
			}
			o.currentBlock = nb
			o.currentIndex++
			o.offset = 0
		}

		n := blockSize - o.offset
		if n > remaining {
			n = remaining
		}
		chunk, err := img.readAt(o.currentBlock, o.offset, n)
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
		o.offset += n
		remaining -= n
	}
	return out, nil
}
