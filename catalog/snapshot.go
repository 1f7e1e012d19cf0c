package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Build scans the backing source directory once, non-recursively, and
// returns the immutable catalog a mount serves from. Subdirectories,
// symlinks and special files under the source are skipped and counted;
// a source that cannot be opened or enumerated fails with
// ErrSourceUnreadable.
func Build(source string) (*Catalog, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, source, err)
	}

	info, err := os.Stat(absSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, absSource, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceUnreadable, absSource)
	}

	// os.ReadDir sorts by name, which fixes snapshot order and makes
	// inode assignment deterministic across identical sources.
	dirEntries, err := os.ReadDir(absSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, absSource, err)
	}

	c := &Catalog{
		source:  absSource,
		builtAt: time.Now(),
		byName:  make(map[string]int, len(dirEntries)),
		byInode: make(map[uint64]int, len(dirEntries)),
	}

	rootUID, rootGID := ownerIDs(info)
	c.root = Entry{
		Inode: RootInode,
		Name:  filepath.Base(absSource),
		Path:  absSource,
		Kind:  KindDirectory,
		Size:  info.Size(),
		Mode:  os.ModeDir | 0o555,
		Nlink: 2,
		UID:   rootUID,
		GID:   rootGID,
		Mtime: info.ModTime(),
	}

	alloc := newInodeAllocator(RootInode)
	for _, de := range dirEntries {
		switch {
		case de.IsDir():
			// Flat namespace: nested directories are not exposed.
			c.skippedDirs++
			continue
		case !de.Type().IsRegular():
			// Symlinks, devices, sockets, fifos.
			c.skippedSpecial++
			continue
		}

		fi, err := de.Info()
		if err != nil {
			// A file that vanished or cannot be stat'd mid-scan is
			// surfaced, not silently dropped from the snapshot.
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, filepath.Join(absSource, de.Name()), err)
		}

		uid, gid := ownerIDs(fi)
		entry := Entry{
			Inode: alloc.Next(),
			Name:  de.Name(),
			Path:  filepath.Join(absSource, de.Name()),
			Kind:  KindFile,
			Size:  fi.Size(),
			Mode:  0o444,
			Nlink: 1,
			UID:   uid,
			GID:   gid,
			Mtime: fi.ModTime(),
		}
		c.byName[entry.Name] = len(c.entries)
		c.byInode[entry.Inode] = len(c.entries)
		c.entries = append(c.entries, entry)
	}

	return c, nil
}

func ownerIDs(fi os.FileInfo) (uint32, uint32) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return st.Uid, st.Gid
	}
	return 0, 0
}
