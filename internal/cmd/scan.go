package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/passfs/passfs/catalog"
)

// NewScanCmd creates and returns the scan subcommand for the passfs
// CLI. It builds a snapshot of a source directory without mounting.
func NewScanCmd() *cobra.Command {
	var (
		path       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "scan [PATH]",
		Short: "Build a snapshot of a source directory and print its summary",
		Long: `Build the same snapshot a mount would serve from and print what it
contains: file count, total bytes, skipped subdirectories and special
files, and the modification time range. Useful for checking what a
mount of the directory will expose before actually mounting it.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				path = args[0]
			}
			runScan(path, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "./", "Path to scan")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")

	return cmd
}

func runScan(path string, jsonOutput bool) {
	cat, err := catalog.Build(path)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", path, err)
	}

	summary := cat.Summary()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			log.Fatalf("Failed to encode summary: %v", err)
		}
		return
	}

	fmt.Printf("Source:            %s\n", summary.Source)
	fmt.Printf("Files:             %d\n", summary.FileCount)
	fmt.Printf("Total bytes:       %d\n", summary.TotalBytes)
	fmt.Printf("Skipped dirs:      %d\n", summary.SkippedDirs)
	fmt.Printf("Skipped special:   %d\n", summary.SkippedSpecial)
	if summary.FileCount > 0 {
		fmt.Printf("Oldest mtime:      %s\n", summary.OldestMtime)
		fmt.Printf("Newest mtime:      %s\n", summary.NewestMtime)
	}
}
