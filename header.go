package blockfs

import "encoding/binary"

// headerSize is the fixed 4-byte prefix: u16LE block_size || u16LE block_count.
const headerSize = 4

type header struct {
	BlockSize  uint16
	BlockCount uint16
}

func (h header) marshalBinary() []byte {
	b := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(b[0:2], h.BlockSize)
	binary.LittleEndian.PutUint16(b[2:4], h.BlockCount)
	return b
}

func decodeHeader(b []byte) (header, error) {
	if len(b) < headerSize {
		return header{}, newErr(CodeBadImage, "short header")
	}
	h := header{
		BlockSize:  binary.LittleEndian.Uint16(b[0:2]),
		BlockCount: binary.LittleEndian.Uint16(b[2:4]),
	}
	if h.BlockSize == 0 {
		return header{}, newErr(CodeBadImage, "zero block size")
	}
	if h.BlockCount == 0 {
		return header{}, newErr(CodeBadImage, "zero block count")
	}
	return h, nil
}
