package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version.
	Version = "(untracked)"
	// CommitSHA is the commit sha.
	CommitSHA = "(unknown)"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("cookiejar %v/%v %v\n", Version, CommitSHA, runtime.Version())
		},
	})
}
