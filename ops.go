package blockfs

import "fmt"

// EntryKind is the resolved, user-facing form of a directory entry's raw
// on-disk type field.
type EntryKind int

const (
	KindUnknown EntryKind = iota
	KindDirectory
	KindFile
)

func kindFromType(t uint16) EntryKind {
	switch t {
	case entryDir:
		return KindDirectory
	case entryFile:
		return KindFile
	default:
		return KindUnknown
	}
}

func (k EntryKind) tag() string {
	switch k {
	case KindDirectory:
		return "dir"
	case KindFile:
		return "file"
	default:
		return "unkn"
	}
}

// DirListing is one entry as reported by Ls: {type-tag, target_block, name}.
type DirListing struct {
	Kind   EntryKind
	Target uint16
	Name   string
}

func (l DirListing) String() string {
	return fmt.Sprintf("%-4s 0x%04x %-11s", l.Kind.tag(), l.Target, l.Name)
}

// prelude is the shared validation + resolution step for mkdir/touch/rm:
// split path into parent/leaf, reject the root as a leaf, enforce the name
// length limit, and resolve the parent directory.
func (img *Image) prelude(path string) (parentBlock uint16, leaf string, err error) {
	if len(path) == 0 || path[0] != '/' {
		return 0, "", newErr(CodeInvalidPath, "path must be absolute")
	}
	parent, leaf := splitParentLeaf(path)
	if leaf == "/" {
		return 0, "", newErr(CodeInvalidPath, "cannot modify the root directory")
	}
	if len(leaf)+1 > nameFieldLen {
		return 0, "", newErr(CodeInvalidPath, "name too long: "+leaf)
	}

	parentBlock, err = img.resolveDirectory(parent)
	if err != nil {
		return 0, "", err
	}
	return parentBlock, leaf, nil
}

// createEntry implements the shared body of Mkdir and Touch: both allocate
// one new block for the named object and link a new directory entry naming
// it, differing only in the entry's type field. When the parent's chain is
// full, a second block is allocated and linked as the parent's new tail.
func (img *Image) createEntry(path string, kind uint16) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	parentBlock, leaf, err := img.prelude(path)
	if err != nil {
		return err
	}

	it, err := img.newDirIterator(parentBlock)
	if err != nil {
		return err
	}
	for {
		e, err := it.next()
		if err != nil {
			return err
		}
		if e == nil {
			break
		}
		if e.Name == leaf {
			return newErr(CodeExists, "already exists: "+leaf)
		}
	}

	newBlock, err := img.at.alloc(eofBlock, eofBlock)
	if err != nil {
		return err
	}
	// A block freed by Rm keeps its old bytes; clear it so a new directory
	// starts empty (its first entry reads END) and a new file starts zeroed.
	if err := img.writeBlock(newBlock, make([]byte, img.header.BlockSize)); err != nil {
		return err
	}

	var targetBlock uint16
	var targetOffset int
	if it.reachedEOF {
		tailBlock, err := img.at.alloc(it.block, eofBlock)
		if err != nil {
			_ = img.at.freeChain(newBlock)
			return err
		}
		if err := img.at.setNext(it.block, tailBlock); err != nil {
			return err
		}
		if err := img.writeBlock(tailBlock, make([]byte, img.header.BlockSize)); err != nil {
			return err
		}
		targetBlock, targetOffset = tailBlock, 0
	} else {
		targetBlock, targetOffset = it.block, it.offset
	}

	enc, err := encodeDirEntry(dirEntry{Type: kind, Target: newBlock, Name: leaf})
	if err != nil {
		return err
	}
	return img.writeAt(targetBlock, targetOffset, enc)
}

// Mkdir creates an empty directory at path.
func (img *Image) Mkdir(path string) error { return img.createEntry(path, entryDir) }

// Touch creates an empty file at path.
func (img *Image) Touch(path string) error { return img.createEntry(path, entryFile) }

// Ls lists the entries of the directory named by path, in insertion order.
func (img *Image) Ls(path string) ([]DirListing, error) {
	img.mu.Lock()
	defer img.mu.Unlock()

	block, err := img.resolveDirectory(path)
	if err != nil {
		return nil, err
	}
	it, err := img.newDirIterator(block)
	if err != nil {
		return nil, err
	}

	var out []DirListing
	for {
		e, err := it.next()
		if err != nil {
			return nil, err
		}
		if e == nil {
			break
		}
		out = append(out, DirListing{Kind: kindFromType(e.Type), Target: e.Target, Name: e.Name})
	}
	return out, nil
}

// Rm removes the entry at path, freeing its block chain and compacting the
// parent directory by moving the last entry into the freed slot. Rmdir is a
// synonym: neither checks for emptiness nor recurses, matching the
// permissive behavior this implementation preserves rather than "fixing".
func (img *Image) Rm(path string) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	parentBlock, leaf, err := img.prelude(path)
	if err != nil {
		return err
	}

	it, err := img.newDirIterator(parentBlock)
	if err != nil {
		return err
	}

	var victimBlock, lastBlock uint16
	var victimOffset, lastOffset int
	var victimTarget uint16
	var found bool

	for {
		e, err := it.next()
		if err != nil {
			return err
		}
		if e == nil {
			break
		}
		lastBlock, lastOffset = it.entryBlock, it.entryOffset
		if e.Name == leaf {
			victimBlock, victimOffset, victimTarget, found = it.entryBlock, it.entryOffset, e.Target, true
		}
	}
	if !found {
		return newErr(CodeNotFound, "not found: "+leaf)
	}

	if err := img.at.freeChain(victimTarget); err != nil {
		return err
	}

	if lastBlock != victimBlock || lastOffset != victimOffset {
		lastBytes, err := img.readAt(lastBlock, lastOffset, dirEntrySize)
		if err != nil {
			return err
		}
		if err := img.writeAt(victimBlock, victimOffset, lastBytes); err != nil {
			return err
		}
	}
	// The entry that used to be last (now duplicated into the victim's slot,
	// or — when the victim was itself last — simply the victim) must be
	// cleared to the END sentinel so the directory actually shrinks by one
	// entry, not just gains a duplicate.
	return img.writeAt(lastBlock, lastOffset, make([]byte, dirEntrySize))
}

// Rmdir is an alias for Rm.
func (img *Image) Rmdir(path string) error { return img.Rm(path) }
