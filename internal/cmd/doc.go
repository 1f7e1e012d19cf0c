// Package cmd implements the passfs command-line interface: the mount
// command plus the seed/scan/verify utilities around it.
package cmd
