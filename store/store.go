// Package store is the backing I/O adapter: it opens and reads the
// real files behind a passfs mount.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/passfs/passfs/catalog"
)

// DefaultMaxOpen caps simultaneously open backing descriptors when the
// caller does not pick a limit.
const DefaultMaxOpen = 512

// Store opens backing files on demand and bounds the number of
// descriptors held open at once so heavy concurrent open/read traffic
// cannot exhaust the process fd limit.
type Store struct {
	sem *semaphore.Weighted
}

// New creates a store that holds at most maxOpen backing descriptors
// open simultaneously. Values <= 0 fall back to DefaultMaxOpen.
func New(maxOpen int64) *Store {
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpen
	}
	return &Store{sem: semaphore.NewWeighted(maxOpen)}
}

// Open opens the backing file at path for positioned reads. It blocks
// while the descriptor cap is exhausted, honoring ctx cancellation. A
// file that cannot be opened (permissions, deleted after snapshot)
// fails with catalog.ErrSourceUnreadable.
func (s *Store) Open(ctx context.Context, path string) (*Handle, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring descriptor slot: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		s.sem.Release(1)
		return nil, fmt.Errorf("%w: %s: %w", catalog.ErrSourceUnreadable, path, err)
	}
	return &Handle{store: s, f: f}, nil
}

// Handle is an open backing descriptor. Reads are positioned, so
// concurrent reads on one handle at different offsets never contend on
// shared cursor state.
type Handle struct {
	store *Store
	f     *os.File
	once  sync.Once
}

// ReadAt reads up to len(p) bytes starting at offset off. A short
// count only means end-of-file; an offset at or past end-of-file
// returns 0 bytes and no error. Any other failure wraps
// catalog.ErrIOFailure and is never retried.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	n, err := h.f.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: %s at offset %d: %v", catalog.ErrIOFailure, h.f.Name(), off, err)
	}
	return n, nil
}

// Close releases the descriptor and its slot. Safe to call more than
// once; only the first call closes the file.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		err = h.f.Close()
		h.store.sem.Release(1)
	})
	return err
}
