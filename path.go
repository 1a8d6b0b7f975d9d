package blockfs

import "strings"

// rootBlock is the first block of the root directory: always block 0,
// permanently allocated.
const rootBlock uint16 = 0

// resolveDirectory resolves an absolute slash-delimited path to the block
// number of the directory it names. Empty segments, including a trailing
// slash, are skipped, so "/" resolves to rootBlock.
func (img *Image) resolveDirectory(path string) (uint16, error) {
	if len(path) == 0 || path[0] != '/' {
		return 0, newErr(CodeInvalidPath, "path must be absolute")
	}

	cur := rootBlock
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if len(seg)+1 > nameFieldLen {
			return 0, newErr(CodeInvalidPath, "path segment too long: "+seg)
		}

		it, err := img.newDirIterator(cur)
		if err != nil {
			return 0, err
		}

		var found bool
		var target, typ uint16
		for {
			e, err := it.next()
			if err != nil {
				return 0, err
			}
			if e == nil {
				break
			}
			if e.Name == seg {
				found, target, typ = true, e.Target, e.Type
				break
			}
		}
		if !found {
			return 0, newErr(CodeNotFound, "no such path segment: "+seg)
		}
		if typ != entryDir {
			return 0, newErr(CodeNotADirectory, seg+" is not a directory")
		}
		cur = target
	}
	return cur, nil
}

// splitParentLeaf implements standard dirname/basename semantics for the
// namespace operations' shared prelude. The root path "/" is its own
// "leaf", which callers reject as an invalid mutation target; any path that
// is nothing but slashes (e.g. "//", "///") also names the root and must
// resolve to the same ("/", "/") pair, not an empty leaf.
func splitParentLeaf(p string) (parent, leaf string) {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/", "/"
	}

	idx := strings.LastIndexByte(trimmed, '/')
	if idx <= 0 {
		return "/", trimmed[idx+1:]
	}
	return trimmed[:idx], trimmed[idx+1:]
}
