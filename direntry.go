package blockfs

import (
	"bytes"
	"encoding/binary"
)

const (
	dirEntrySize = 16
	nameFieldLen = 12 // includes the terminating NUL
	maxNameLen   = nameFieldLen - 1

	entryEnd  uint16 = 0
	entryDir  uint16 = 1
	entryFile uint16 = 2
)

// dirEntry is the decoded form of one 16-byte directory record:
// u16LE type || u16LE target_block || 12 bytes name.
type dirEntry struct {
	Type   uint16
	Target uint16
	Name   string
}

func decodeDirEntry(b []byte) (dirEntry, error) {
	if len(b) < dirEntrySize {
		return dirEntry{}, newErr(CodeBadImage, "short directory entry")
	}
	typ := binary.LittleEndian.Uint16(b[0:2])
	target := binary.LittleEndian.Uint16(b[2:4])

	nameField := b[4:16]
	name := nameField
	if nul := bytes.IndexByte(nameField, 0); nul >= 0 {
		name = nameField[:nul]
	}
	return dirEntry{Type: typ, Target: target, Name: string(name)}, nil
}

func encodeDirEntry(e dirEntry) ([]byte, error) {
	if len(e.Name)+1 > nameFieldLen {
		return nil, newErr(CodeInvalidPath, "name exceeds 11 bytes")
	}
	buf := make([]byte, dirEntrySize)
	binary.LittleEndian.PutUint16(buf[0:2], e.Type)
	binary.LittleEndian.PutUint16(buf[2:4], e.Target)
	copy(buf[4:16], e.Name) // trailing bytes stay zero: NUL terminator + undefined padding
	return buf, nil
}
