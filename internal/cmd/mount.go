package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"

	"github.com/passfs/passfs/catalog"
	"github.com/passfs/passfs/metrics"
	"github.com/passfs/passfs/passfs"
	"github.com/passfs/passfs/store"
	"github.com/passfs/passfs/version"
)

type mountOptions struct {
	autoUnmount bool
	allowOther  bool
	maxOpen     int64
	metricsAddr string
}

// NewMountCmd creates and returns the mount subcommand for the passfs
// CLI. It mounts a pass-through view of a source directory at a
// mountpoint.
func NewMountCmd() *cobra.Command {
	var opts mountOptions

	cmd := &cobra.Command{
		Use:   "mount SOURCE_DIR MOUNTPOINT",
		Short: "Mount a pass-through view of a source directory",
		Long: `Mount a read-only pass-through filesystem at the specified mountpoint.

SOURCE_DIR is an existing directory on a backing filesystem that
actually holds the files. MOUNTPOINT is the directory where the
pass-through view will be mounted.

The source directory is scanned exactly once, at mount time. Files
created, removed or resized in the source afterwards are not picked up
until the next mount.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMount(args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.autoUnmount, "auto-unmount", false, "Automatically unmount on process exit")
	cmd.Flags().BoolVar(&opts.allowOther, "allow-other", false, "Allow other users to access the filesystem")
	cmd.Flags().Int64Var(&opts.maxOpen, "max-open", store.DefaultMaxOpen, "Maximum simultaneously open backing descriptors")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9100)")

	return cmd
}

func runMount(source, mountpoint string, opts mountOptions) {
	// Print version info on startup
	fmt.Printf("passfs %s starting...\n", version.GetFullVersion())

	if pathsOverlap(source, mountpoint) {
		log.Fatalf("Source directory and mountpoint overlap: %s / %s", source, mountpoint)
	}

	// A source that cannot be scanned is fatal before any request is
	// served.
	cat, err := catalog.Build(source)
	if err != nil {
		log.Fatalf("Failed to scan source directory: %v", err)
	}

	summary := cat.Summary()
	if summary.SkippedDirs > 0 || summary.SkippedSpecial > 0 {
		log.Printf("snapshot skipped %d subdirectories and %d special files (flat namespace)",
			summary.SkippedDirs, summary.SkippedSpecial)
	}

	var stats *metrics.Collector
	if opts.metricsAddr != "" {
		stats = metrics.New()
		go func() {
			if err := stats.Serve(opts.metricsAddr); err != nil {
				log.Printf("metrics endpoint failed: %v", err)
			}
		}()
	}

	filesystem := passfs.New(cat, store.New(opts.maxOpen), stats)

	mountOpts := []fuse.MountOption{
		fuse.FSName("passfs"),
		fuse.Subtype("passfs"),
		fuse.ReadOnly(),
	}
	if opts.allowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}

	c, err := fuse.Mount(mountpoint, mountOpts...)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()
	if opts.autoUnmount {
		defer fuse.Unmount(mountpoint)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received signal, shutting down...")

		fuse.Unmount(mountpoint)
		c.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()

	log.Printf("passfs %s mounted at %s (source: %s, %d files, %d bytes)",
		version.GetVersion(), mountpoint, summary.Source, summary.FileCount, summary.TotalBytes)
	err = fs.Serve(c, filesystem)
	if err != nil {
		log.Fatal(err)
	}
}

// pathsOverlap reports whether one path contains the other. Mounting
// inside the source would make the pass-through view recurse into
// itself.
func pathsOverlap(path1, path2 string) bool {
	abs1, err := filepath.Abs(path1)
	if err != nil {
		abs1 = filepath.Clean(path1)
	}
	abs2, err := filepath.Abs(path2)
	if err != nil {
		abs2 = filepath.Clean(path2)
	}

	if abs1 == abs2 {
		return true
	}

	sep := string(os.PathSeparator)
	return strings.HasPrefix(abs1, abs2+sep) || strings.HasPrefix(abs2, abs1+sep)
}
