//go:build fuse

package blockfs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Mount exposes an open image as a read-write FUSE filesystem rooted at
// mountpoint. It returns once the mount is established, with requests served
// in the background; callers block on server.Wait() and call
// server.Unmount() to stop.
//
// Because an image supports at most one open file handle and is not safe
// for concurrent mutation, every FUSE callback below goes through the
// engine's own exported methods, which already serialize on the image's
// internal lock — no additional locking is needed here.
func Mount(img *Image, mountpoint string) (*fuse.Server, error) {
	root := &imgNode{img: img, path: "/"}
	server, err := fs.Mount(mountpoint, root, &fs.Options{})
	if err != nil {
		return nil, wrapErr(CodeIOFailure, "mount image", err)
	}
	Logger.Printf("mounted %s at %s", img.path, mountpoint)
	return server, nil
}

type imgNode struct {
	fs.Inode
	img  *Image
	path string
}

var (
	_ fs.NodeLookuper  = (*imgNode)(nil)
	_ fs.NodeReaddirer = (*imgNode)(nil)
	_ fs.NodeMkdirer   = (*imgNode)(nil)
	_ fs.NodeCreater   = (*imgNode)(nil)
	_ fs.NodeUnlinker  = (*imgNode)(nil)
	_ fs.NodeRmdirer   = (*imgNode)(nil)
	_ fs.NodeOpener    = (*imgNode)(nil)

	_ fs.FileReader = (*imgFileHandle)(nil)
	_ fs.FileWriter = (*imgFileHandle)(nil)
)

// imgFileHandle bridges a FUSE file descriptor to the engine's single
// open-file handle. Every Read/Write call opens the engine handle, seeks to
// the requested offset, and closes it again, so the engine never observes
// more than one logical session at a time even though the kernel may
// juggle several file descriptors.
type imgFileHandle struct {
	img  *Image
	path string
}

// Open opens the named file to confirm it exists and is a plain file; the
// engine's own handle is acquired per-call in Read/Write rather than held
// for the FUSE file descriptor's lifetime, since the engine permits only one
// open file at a time and a held-open handle would make every other path
// unusable for the duration.
func (n *imgNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if err := n.img.Fopen(n.path); err != nil {
		return nil, 0, errnoFor(err)
	}
	if err := n.img.Fclose(); err != nil {
		return nil, 0, errnoFor(err)
	}
	return &imgFileHandle{img: n.img, path: n.path}, fuse.FOPEN_DIRECT_IO, 0
}

func (fh *imgFileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if err := fh.img.Fopen(fh.path); err != nil {
		return nil, errnoFor(err)
	}
	defer fh.img.Fclose()

	if err := fh.img.Fseek(uint64(off)); err != nil {
		if e, ok := err.(*Error); ok && e.Code == CodeOutOfRange {
			return fuse.ReadResultData(nil), 0
		}
		return nil, errnoFor(err)
	}
	data, err := fh.img.Fread(len(dest))
	if err != nil {
		if e, ok := err.(*Error); !ok || e.Code != CodeReadPastEnd {
			return nil, errnoFor(err)
		}
	}
	return fuse.ReadResultData(data), 0
}

func (fh *imgFileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	if err := fh.img.Fopen(fh.path); err != nil {
		return 0, errnoFor(err)
	}
	defer fh.img.Fclose()

	if err := fh.img.Fseek(uint64(off)); err != nil {
		return 0, errnoFor(err)
	}
	if err := fh.img.Fwrite(data); err != nil {
		return 0, errnoFor(err)
	}
	return uint32(len(data)), 0
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func modeFor(k EntryKind) uint32 {
	if k == KindDirectory {
		return fuse.S_IFDIR
	}
	return fuse.S_IFREG
}

func (n *imgNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	listing, err := n.img.Ls(n.path)
	if err != nil {
		return nil, syscall.EIO
	}
	for _, e := range listing {
		if e.Name != name {
			continue
		}
		child := &imgNode{img: n.img, path: joinPath(n.path, name)}
		return n.NewInode(ctx, child, fs.StableAttr{Mode: modeFor(e.Kind)}), 0
	}
	return nil, syscall.ENOENT
}

func (n *imgNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	listing, err := n.img.Ls(n.path)
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, 0, len(listing))
	for _, e := range listing {
		entries = append(entries, fuse.DirEntry{Name: e.Name, Mode: modeFor(e.Kind)})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *imgNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if err := n.img.Mkdir(joinPath(n.path, name)); err != nil {
		return nil, errnoFor(err)
	}
	child := &imgNode{img: n.img, path: joinPath(n.path, name)}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: fuse.S_IFDIR}), 0
}

func (n *imgNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	if err := n.img.Touch(joinPath(n.path, name)); err != nil {
		return nil, nil, 0, errnoFor(err)
	}
	child := &imgNode{img: n.img, path: joinPath(n.path, name)}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: fuse.S_IFREG}), nil, 0, 0
}

func (n *imgNode) Unlink(ctx context.Context, name string) syscall.Errno {
	if err := n.img.Rm(joinPath(n.path, name)); err != nil {
		return errnoFor(err)
	}
	return 0
}

func (n *imgNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	if err := n.img.Rmdir(joinPath(n.path, name)); err != nil {
		return errnoFor(err)
	}
	return 0
}

func errnoFor(err error) syscall.Errno {
	e, ok := err.(*Error)
	if !ok {
		return syscall.EIO
	}
	switch e.Code {
	case CodeNotFound:
		return syscall.ENOENT
	case CodeExists:
		return syscall.EEXIST
	case CodeNotADirectory:
		return syscall.ENOTDIR
	case CodeNoSpace:
		return syscall.ENOSPC
	case CodeInvalidPath:
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}
