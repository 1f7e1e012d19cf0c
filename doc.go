// Package main provides the passfs command-line interface.
//
// passfs is a pass-through FUSE filesystem: it exposes a single flat
// directory of read-only files and redirects every read and metadata
// operation to corresponding files on a backing filesystem. It exists
// to measure the overhead a user-space filesystem interception layer
// adds to ordinary file I/O.
//
// The main binary supports multiple subcommands:
//   - mount: Mount a pass-through view of a source directory
//   - seed: Generate a flat benchmark corpus of test files
//   - scan: Build a snapshot without mounting and print its summary
//   - verify: Compare a mounted view against its backing directory
package main
