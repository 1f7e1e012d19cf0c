package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taigrr/colorhash"
)

// NewSeedCmd creates and returns the seed subcommand for the passfs
// CLI. It generates a flat benchmark corpus for mounting and measuring.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath string
		fileCount  int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a flat benchmark corpus of test files",
		Long: `Generate test files for benchmarking a passfs mount.

Files are written directly into the output directory (passfs exposes a
single flat directory, so no hierarchy is created). Each file holds a
number of repeated UUID lines; the UUID is drawn from a random pool and
the repeat count is derived from the file name, so a corpus mixes small
and multi-kilobyte files in a stable size distribution.`,
		Run: func(cmd *cobra.Command, args []string) {
			runSeed(outputPath, fileCount, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 10000, "Number of files to generate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

func runSeed(outputPath string, fileCount int, verbose bool) {
	if verbose {
		fmt.Printf("Generating %d test files in %s\n", fileCount, outputPath)
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// Generate pool of 50 UUIDs to draw file content from
	uuidPool := make([]string, 50)
	for i := range uuidPool {
		uuidPool[i] = uuid.New().String()
	}

	var totalBytes int64
	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("bench-%06d.txt", i)

		// colorhash gives a cheap stable string hash; it picks the
		// UUID and the line count for this file name.
		h := uint(colorhash.HashString(name))
		id := uuidPool[h%uint(len(uuidPool))]
		lines := 1 + int(h%256)

		content := strings.Repeat(id+"\n", lines)
		if err := os.WriteFile(filepath.Join(outputPath, name), []byte(content), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		totalBytes += int64(len(content))

		if verbose && (i+1)%1000 == 0 {
			fmt.Printf("Progress: %d files written\n", i+1)
		}
	}

	fmt.Printf("Wrote %d files (%d bytes) to %s\n", fileCount, totalBytes, outputPath)
}
