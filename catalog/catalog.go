package catalog

import (
	"os"
	"time"
)

// RootInode is the inode of the single directory passfs exposes.
// It always exists and is never reassigned.
const RootInode uint64 = 1

// Kind discriminates catalog entries. Only the root is a directory;
// everything else in the snapshot is a regular file.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// Entry associates an inode with a backing file and its attribute
// snapshot. Attributes are captured once at snapshot time and never
// refreshed while mounted.
type Entry struct {
	Inode uint64      `json:"inode"`
	Name  string      `json:"name"`  // leaf name as it appears in FUSE
	Path  string      `json:"path"`  // absolute backing path
	Kind  Kind        `json:"kind"`
	Size  int64       `json:"size"`
	Mode  os.FileMode `json:"mode"`
	Nlink uint32      `json:"nlink"`
	UID   uint32      `json:"uid"`
	GID   uint32      `json:"gid"`
	Mtime time.Time   `json:"mtime"`
}

// DirEnt is one element of a directory listing.
type DirEnt struct {
	Inode uint64 `json:"inode"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
}

// Catalog is the immutable snapshot built once at mount time. All
// methods are pure lookups, so concurrent use needs no locking.
type Catalog struct {
	source  string
	builtAt time.Time
	root    Entry
	entries []Entry // snapshot order, listings derive from this
	byName  map[string]int
	byInode map[uint64]int

	skippedDirs    int
	skippedSpecial int
}

// Source returns the backing directory this catalog was built from.
func (c *Catalog) Source() string {
	return c.source
}

// Root returns the attribute snapshot of the root directory.
func (c *Catalog) Root() Entry {
	return c.root
}

// Len returns the number of file entries in the snapshot.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Iterate yields every file entry in snapshot order.
func (c *Catalog) Iterate(yield func(Entry) bool) {
	for _, entry := range c.entries {
		if !yield(entry) {
			return
		}
	}
}

// Lookup resolves a child name under a known parent inode. The flat
// namespace means only the root can be a parent.
func (c *Catalog) Lookup(parent uint64, name string) (Entry, error) {
	if parent != RootInode {
		return Entry{}, ErrNotFound
	}
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return c.entries[i], nil
}

// Attributes returns the cached metadata for an inode.
func (c *Catalog) Attributes(ino uint64) (Entry, error) {
	if ino == RootInode {
		return c.root, nil
	}
	i, ok := c.byInode[ino]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return c.entries[i], nil
}

// List returns the full ordered listing for a directory inode: "."
// and ".." first, then every file entry in snapshot order. The result
// is identical across repeated calls within one mount session.
func (c *Catalog) List(ino uint64) ([]DirEnt, error) {
	if ino != RootInode {
		if _, ok := c.byInode[ino]; !ok {
			return nil, ErrNotFound
		}
		return nil, ErrNotADirectory
	}

	listing := make([]DirEnt, 0, len(c.entries)+2)
	// The root is its own parent, so "." and ".." share its inode.
	listing = append(listing,
		DirEnt{Inode: RootInode, Kind: KindDirectory, Name: "."},
		DirEnt{Inode: RootInode, Kind: KindDirectory, Name: ".."},
	)
	for _, entry := range c.entries {
		listing = append(listing, DirEnt{Inode: entry.Inode, Kind: entry.Kind, Name: entry.Name})
	}
	return listing, nil
}

// ResolvePath returns the backing location for content I/O.
func (c *Catalog) ResolvePath(ino uint64) (string, error) {
	if ino == RootInode {
		return "", ErrNotAFile
	}
	i, ok := c.byInode[ino]
	if !ok {
		return "", ErrNotFound
	}
	return c.entries[i].Path, nil
}
