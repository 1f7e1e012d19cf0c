package catalog

import (
	"sync"
)

// inodeAllocator hands out sequential inode numbers. An inode, once
// assigned, is never reused or reassigned for the catalog's lifetime.
type inodeAllocator struct {
	// could use the atomic package for better performance, but this is simpler
	mu      sync.Mutex
	highest uint64
}

// newInodeAllocator returns an allocator whose first Next() call
// returns start+1.
func newInodeAllocator(start uint64) *inodeAllocator {
	return &inodeAllocator{highest: start}
}

func (a *inodeAllocator) Next() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.highest++
	return a.highest
}

// Highest returns the largest inode handed out so far.
func (a *inodeAllocator) Highest() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.highest
}
