package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// downloadCmd is a thin CLI surface stub: fetching reference genomes from
// NCBI/RefSeq and assembling them into a tree is handled by an external
// script, out of scope here (spec §1's "Non-goals" excludes network
// access and genome-database management). It exists only so the
// subcommand tree matches spec §6.4 and fails loudly rather than silently
// doing nothing.
var downloadCmd = &cobra.Command{
	Use:    "download",
	Short:  "(unsupported) download reference genomes for a taxonomic tree",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		checkError(fmt.Errorf("download: genome download/assembly is performed by an external tool, not prophyle-go"))
	},
}

func init() {
	RootCmd.AddCommand(downloadCmd)
}
