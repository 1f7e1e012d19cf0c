package cmd

import (
	"testing"
)

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		path1    string
		path2    string
		expected bool
	}{
		{
			name:     "identical paths",
			path1:    "/srv/data",
			path2:    "/srv/data",
			expected: true,
		},
		{
			name:     "mountpoint inside source",
			path1:    "/srv/data",
			path2:    "/srv/data/mnt",
			expected: true,
		},
		{
			name:     "source inside mountpoint",
			path1:    "/mnt/view/data",
			path2:    "/mnt/view",
			expected: true,
		},
		{
			name:     "completely separate paths",
			path1:    "/srv/data",
			path2:    "/mnt/view",
			expected: false,
		},
		{
			name:     "sibling directories",
			path1:    "/srv/data",
			path2:    "/srv/view",
			expected: false,
		},
		{
			name:     "sibling with common name prefix",
			path1:    "/srv/data",
			path2:    "/srv/data2",
			expected: false,
		},
		{
			name:     "relative paths - overlapping",
			path1:    "data",
			path2:    "data/mnt",
			expected: true,
		},
		{
			name:     "relative paths - separate",
			path1:    "data",
			path2:    "mnt",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pathsOverlap(tt.path1, tt.path2)
			if result != tt.expected {
				t.Errorf("pathsOverlap(%q, %q) = %v, expected %v", tt.path1, tt.path2, result, tt.expected)
			}
		})
	}
}
