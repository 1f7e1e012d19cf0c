package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func buildTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "hello from ext4")
	writeFile(t, dir, "world.txt", "world")

	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("creating subdirectory: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "hello.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	c, err := Build(dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c, dir
}

func TestBuild_SnapshotContents(t *testing.T) {
	c, dir := buildTestCatalog(t)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (subdirectory and symlink must be skipped)", c.Len())
	}
	if c.skippedDirs != 1 {
		t.Errorf("skippedDirs = %d, want 1", c.skippedDirs)
	}
	if c.skippedSpecial != 1 {
		t.Errorf("skippedSpecial = %d, want 1", c.skippedSpecial)
	}

	root := c.Root()
	if root.Inode != RootInode {
		t.Errorf("root inode = %d, want %d", root.Inode, RootInode)
	}
	if root.Kind != KindDirectory {
		t.Errorf("root kind = %v, want KindDirectory", root.Kind)
	}
	if root.Nlink != 2 {
		t.Errorf("root nlink = %d, want 2", root.Nlink)
	}

	seen := make(map[uint64]bool)
	for e := range c.Iterate {
		if e.Inode <= RootInode {
			t.Errorf("file %s got inode %d, want > %d", e.Name, e.Inode, RootInode)
		}
		if seen[e.Inode] {
			t.Errorf("duplicate inode %d", e.Inode)
		}
		seen[e.Inode] = true

		if e.Kind != KindFile {
			t.Errorf("file %s kind = %v, want KindFile", e.Name, e.Kind)
		}
		if e.Mode != 0o444 {
			t.Errorf("file %s mode = %v, want 0444", e.Name, e.Mode)
		}
		if e.Path != filepath.Join(dir, e.Name) {
			t.Errorf("file %s backing path = %s", e.Name, e.Path)
		}
	}

	hello, err := c.Lookup(RootInode, "hello.txt")
	if err != nil {
		t.Fatalf("Lookup(hello.txt) failed: %v", err)
	}
	if hello.Size != int64(len("hello from ext4")) {
		t.Errorf("hello.txt size = %d, want %d", hello.Size, len("hello from ext4"))
	}
}

func TestBuild_SourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		source func(t *testing.T) string
	}{
		{
			name: "missing directory",
			source: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
		},
		{
			name: "source is a regular file",
			source: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "plain.txt", "not a directory")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.source(t))
			if !errors.Is(err, ErrSourceUnreadable) {
				t.Errorf("Build error = %v, want ErrSourceUnreadable", err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	c, _ := buildTestCatalog(t)

	hello, err := c.Lookup(RootInode, "hello.txt")
	if err != nil {
		t.Fatalf("Lookup(hello.txt) failed: %v", err)
	}
	if hello.Name != "hello.txt" {
		t.Errorf("entry name = %s, want hello.txt", hello.Name)
	}

	if _, err := c.Lookup(RootInode, "missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(missing.txt) error = %v, want ErrNotFound", err)
	}
	if _, err := c.Lookup(hello.Inode, "world.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup under non-root parent error = %v, want ErrNotFound", err)
	}
	if _, err := c.Lookup(RootInode, "nested"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(nested) error = %v, want ErrNotFound (directories are not exposed)", err)
	}
}

func TestAttributes(t *testing.T) {
	c, _ := buildTestCatalog(t)

	root, err := c.Attributes(RootInode)
	if err != nil {
		t.Fatalf("Attributes(root) failed: %v", err)
	}
	if root.Kind != KindDirectory {
		t.Errorf("root kind = %v, want KindDirectory", root.Kind)
	}

	hello, _ := c.Lookup(RootInode, "hello.txt")
	attrs, err := c.Attributes(hello.Inode)
	if err != nil {
		t.Fatalf("Attributes(%d) failed: %v", hello.Inode, err)
	}
	if attrs != hello {
		t.Errorf("Attributes = %+v, want %+v", attrs, hello)
	}

	if _, err := c.Attributes(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Attributes(9999) error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	c, _ := buildTestCatalog(t)

	listing, err := c.List(RootInode)
	if err != nil {
		t.Fatalf("List(root) failed: %v", err)
	}

	if len(listing) != c.Len()+2 {
		t.Fatalf("listing has %d entries, want %d", len(listing), c.Len()+2)
	}
	if listing[0].Name != "." || listing[0].Inode != RootInode || listing[0].Kind != KindDirectory {
		t.Errorf("first entry = %+v, want . with root inode", listing[0])
	}
	if listing[1].Name != ".." || listing[1].Inode != RootInode || listing[1].Kind != KindDirectory {
		t.Errorf("second entry = %+v, want .. with root inode", listing[1])
	}

	// Repeated enumeration within one mount session is identical.
	again, err := c.List(RootInode)
	if err != nil {
		t.Fatalf("second List(root) failed: %v", err)
	}
	if !reflect.DeepEqual(listing, again) {
		t.Errorf("repeated listings differ:\n%+v\n%+v", listing, again)
	}

	hello, _ := c.Lookup(RootInode, "hello.txt")
	if _, err := c.List(hello.Inode); !errors.Is(err, ErrNotADirectory) {
		t.Errorf("List(file inode) error = %v, want ErrNotADirectory", err)
	}
	if _, err := c.List(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("List(9999) error = %v, want ErrNotFound", err)
	}
}

func TestResolvePath(t *testing.T) {
	c, dir := buildTestCatalog(t)

	hello, _ := c.Lookup(RootInode, "hello.txt")
	path, err := c.ResolvePath(hello.Inode)
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if path != filepath.Join(dir, "hello.txt") {
		t.Errorf("ResolvePath = %s, want %s", path, filepath.Join(dir, "hello.txt"))
	}

	if _, err := c.ResolvePath(RootInode); !errors.Is(err, ErrNotAFile) {
		t.Errorf("ResolvePath(root) error = %v, want ErrNotAFile", err)
	}
	if _, err := c.ResolvePath(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolvePath(9999) error = %v, want ErrNotFound", err)
	}
}

func TestListing_LookupRoundTrip(t *testing.T) {
	c, _ := buildTestCatalog(t)

	listing, err := c.List(RootInode)
	if err != nil {
		t.Fatalf("List(root) failed: %v", err)
	}

	for _, ent := range listing {
		if ent.Name == "." || ent.Name == ".." {
			continue
		}

		byName, err := c.Lookup(RootInode, ent.Name)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", ent.Name, err)
		}
		if byName.Inode != ent.Inode {
			t.Errorf("Lookup(%s) inode = %d, listing has %d", ent.Name, byName.Inode, ent.Inode)
		}

		byInode, err := c.Attributes(ent.Inode)
		if err != nil {
			t.Fatalf("Attributes(%d) failed: %v", ent.Inode, err)
		}
		if byInode != byName {
			t.Errorf("Attributes(%d) = %+v, Lookup(%s) = %+v", ent.Inode, byInode, ent.Name, byName)
		}
	}
}
