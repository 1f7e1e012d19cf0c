package cmd

import (
	"github.com/passfs/passfs/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the passfs
// CLI. It sets up all subcommands, command groups, and basic
// configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "passfs",
		Short: "passfs - a pass-through FUSE filesystem for measuring interception overhead",
		Long: `passfs exposes a single flat directory of read-only files and redirects
every read and metadata operation to corresponding files on a backing
filesystem (for example an EXT4 mount). Its purpose is measuring the
overhead a user-space filesystem layer adds to plain file I/O.

Use subcommands to perform different operations:
  - mount:  Mount a pass-through view of a source directory
  - seed:   Generate a flat benchmark corpus of test files
  - scan:   Build a snapshot without mounting and print its summary
  - verify: Compare a mounted view against its backing directory`,
		Version: version.GetFullVersion(),
	}

	groupFilesystem := "filesystem"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mountCmd := NewMountCmd()
	seedCmd := NewSeedCmd()
	scanCmd := NewScanCmd()
	verifyCmd := NewVerifyCmd()

	mountCmd.GroupID = groupFilesystem
	seedCmd.GroupID = groupUtilities
	scanCmd.GroupID = groupUtilities
	verifyCmd.GroupID = groupUtilities

	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(verifyCmd)

	return rootCmd
}
