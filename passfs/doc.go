// Package passfs implements the kernel-facing side of the pass-through
// filesystem: inode and name resolution, attribute reporting, directory
// enumeration and chunked read dispatch, all against a catalog built
// once at mount time. Content reads are delegated to the store package,
// which performs the actual positioned reads on the backing files.
package passfs
