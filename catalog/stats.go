package catalog

import (
	"time"

	"github.com/passfs/passfs/version"
)

// Summary describes a snapshot: what the scan command prints and what
// the mount command logs on startup.
type Summary struct {
	Source         string    `json:"source"`
	PassfsVersion  string    `json:"passfs_version"`
	BuiltAt        time.Time `json:"built_at"`
	FileCount      int       `json:"file_count"`
	TotalBytes     int64     `json:"total_bytes"`
	SkippedDirs    int       `json:"skipped_dirs"`
	SkippedSpecial int       `json:"skipped_special"`
	OldestMtime    time.Time `json:"oldest_mtime"`
	NewestMtime    time.Time `json:"newest_mtime"`
}

// Summary computes snapshot statistics from the catalog.
//
// Note: counters are recalculated from the entry slice each call; the
// catalog is immutable, so callers that care can compute this once.
func (c *Catalog) Summary() Summary {
	s := Summary{
		Source:         c.source,
		PassfsVersion:  version.GetVersion(),
		BuiltAt:        c.builtAt,
		FileCount:      len(c.entries),
		SkippedDirs:    c.skippedDirs,
		SkippedSpecial: c.skippedSpecial,
	}
	for e := range c.Iterate {
		s.TotalBytes += e.Size
		if s.OldestMtime.IsZero() || e.Mtime.Before(s.OldestMtime) {
			s.OldestMtime = e.Mtime
		}
		if e.Mtime.After(s.NewestMtime) {
			s.NewestMtime = e.Mtime
		}
	}
	return s
}
