package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// VERSION is the prophyle-go release version.
const VERSION = "0.1.0"

// RootCmd is the base command when prophyle is called without any
// subcommands, following unikmer/cmd/root.go's shape exactly: a Long
// banner embedding VERSION, persistent flags for worker count/verbosity/
// infile-list, Execute() as main()'s sole entry point.
var RootCmd = &cobra.Command{
	Use:   "prophyle",
	Short: "Phylogeny-based metagenomic classifier",
	Long: fmt.Sprintf(`prophyle - phylogeny-based metagenomic classifier

Builds a compressed full-text index over a phylogenetic tree's propagated
k-mer sets and classifies reads against it.

Version: %s

Documents  : https://prophyle.github.io
Source code: https://github.com/karel-brinda/prophyle

`, VERSION),
}

// Execute runs RootCmd, the sole entry point called from
// cmd/prophyle/main.go's main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	if defaultThreads > 2 {
		defaultThreads = 2
	}
	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of worker threads to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose (debug-level) log messages")
	RootCmd.PersistentFlags().StringP("infile-list", "i", "", "file of input files list (one per line); not read by any subcommand")
}
