package passfs

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/passfs/passfs/catalog"
	"github.com/passfs/passfs/metrics"
	"github.com/passfs/passfs/store"
)

// attrTTL is how long the kernel may cache attributes and entries.
// The catalog never changes while mounted, but a short TTL keeps the
// overhead profile close to the reference behavior.
const attrTTL = 1 * time.Second

// blockSize is the block size reported for every entry.
const blockSize = 512

// FS implements the passfs FUSE filesystem: a flat, read-only
// pass-through over a snapshot of the backing source directory.
type FS struct {
	catalog *catalog.Catalog
	store   *store.Store
	stats   *metrics.Collector // nil disables instrumentation
}

// New creates a filesystem serving the given snapshot. The collector
// may be nil.
func New(c *catalog.Catalog, s *store.Store, stats *metrics.Collector) *FS {
	return &FS{
		catalog: c,
		store:   s,
		stats:   stats,
	}
}

// Root returns the root directory node.
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

// errno translates catalog/store errors into the errnos kernel-level
// consumers expect.
func errno(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, catalog.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, catalog.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, catalog.ErrPermissionDenied):
		return syscall.EACCES
	case errors.Is(err, os.ErrNotExist):
		// Backing file deleted after snapshot.
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	}
	return syscall.EIO
}

// fillAttr populates every attribute field the transport expects from
// a catalog entry. A zeroed field here shows up as a caller-visible
// bug (wrong size in ls, bogus owner), so all of them are set.
func fillAttr(e catalog.Entry, a *fuse.Attr) {
	a.Valid = attrTTL
	a.Inode = e.Inode
	a.Size = uint64(e.Size)
	a.Blocks = (uint64(e.Size) + blockSize - 1) / blockSize
	a.Mode = e.Mode
	a.Nlink = e.Nlink
	a.Uid = e.UID
	a.Gid = e.GID
	a.Mtime = e.Mtime
	a.Ctime = e.Mtime
	a.Atime = e.Mtime
	a.BlockSize = blockSize
}

// Dir is the single directory passfs exposes.
type Dir struct {
	fs *FS
}

// Attr returns the root directory attributes from the snapshot.
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	defer d.fs.stats.Observe("getattr", time.Now(), nil)
	fillAttr(d.fs.catalog.Root(), a)
	return nil
}

// Lookup resolves a name under the root to a file node. It is
// idempotent and side-effect-free: the answer comes entirely from the
// immutable catalog.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	start := time.Now()
	entry, err := d.fs.catalog.Lookup(catalog.RootInode, name)
	d.fs.stats.Observe("lookup", start, err)
	if err != nil {
		return nil, errno(err)
	}
	return &File{fs: d.fs, entry: entry}, nil
}

// ReadDirAll lists the root: ".", "..", then one entry per snapshot
// file, in snapshot order every time.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	start := time.Now()
	listing, err := d.fs.catalog.List(catalog.RootInode)
	d.fs.stats.Observe("readdir", start, err)
	if err != nil {
		return nil, errno(err)
	}

	dirents := make([]fuse.Dirent, 0, len(listing))
	for _, ent := range listing {
		t := fuse.DT_File
		if ent.Kind == catalog.KindDirectory {
			t = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: ent.Inode,
			Name:  ent.Name,
			Type:  t,
		})
	}
	return dirents, nil
}

// File is a snapshot entry backed by a real file on the source
// filesystem.
type File struct {
	fs    *FS
	entry catalog.Entry
}

// Attr returns the attribute snapshot captured at mount time.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	defer f.fs.stats.Observe("getattr", time.Now(), nil)
	fillAttr(f.entry, a)
	return nil
}

// Open opens the backing file and returns a per-open handle. The
// filesystem is read-only, so any write intent is refused.
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	start := time.Now()

	if req.Flags&fuse.OpenAccessModeMask != fuse.OpenReadOnly ||
		req.Flags&(fuse.OpenAppend|fuse.OpenTruncate) != 0 {
		f.fs.stats.Observe("open", start, catalog.ErrPermissionDenied)
		return nil, syscall.EACCES
	}

	backing, err := f.fs.store.Open(ctx, f.entry.Path)
	f.fs.stats.Observe("open", start, err)
	if err != nil {
		return nil, errno(err)
	}
	f.fs.stats.HandleOpened()

	return &FileHandle{fs: f.fs, entry: f.entry, backing: backing}, nil
}

// FileHandle is one open of one file. Handles share no mutable state;
// reads are positioned, so concurrent reads on the same handle at
// different offsets both succeed independently.
type FileHandle struct {
	fs      *FS
	entry   catalog.Entry
	backing *store.Handle
}

// Read returns up to req.Size bytes from req.Offset. A short result
// only means end-of-file; an offset at or past end-of-file yields an
// empty result, not an error.
func (h *FileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	start := time.Now()

	buf := make([]byte, req.Size)
	n, err := h.backing.ReadAt(buf, req.Offset)
	h.fs.stats.Observe("read", start, err)
	if err != nil {
		return errno(err)
	}

	resp.Data = buf[:n]
	h.fs.stats.AddReadBytes(n)
	return nil
}

// Release closes the backing descriptor. It always succeeds; the
// underlying close is idempotent, so a double release is harmless.
func (h *FileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	defer h.fs.stats.Observe("release", time.Now(), nil)
	_ = h.backing.Close()
	h.fs.stats.HandleReleased()
	return nil
}
