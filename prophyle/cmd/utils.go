package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karel-brinda/prophyle-go/tree"
)

// utilsCmd groups small tree utilities, the way unikmer/cmd nests its own
// miscellaneous helpers under a "utils" parent command.
var utilsCmd = &cobra.Command{
	Use:   "utils",
	Short: "Miscellaneous tree utilities",
}

var utilsMinimalCmd = &cobra.Command{
	Use:   "minimal tree.nw",
	Short: "Contract unary non-root nodes into their single child (spec §4.2)",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("utils minimal: expected exactly one tree file argument, got %d", len(args)))
		}
		t, err := tree.Load(args[0])
		checkError(err)
		mt := t.MinimalSubtree()
		fmt.Println(mt.Newick())
	},
}

var utilsNewick2NHXCmd = &cobra.Command{
	Use:   "newick2nhx tree.nw",
	Short: "Re-serialize a tree, filling in NHX annotation comments",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("utils newick2nhx: expected exactly one tree file argument, got %d", len(args)))
		}
		t, err := tree.Load(args[0])
		checkError(err)
		fmt.Println(t.Newick())
	},
}

var utilsLCACmd = &cobra.Command{
	Use:   "lca tree.nw name [name...]",
	Short: "Print the lowest common ancestor of two or more named nodes",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 3 {
			checkError(fmt.Errorf("utils lca: expected a tree file and at least two node names"))
		}
		t, err := tree.Load(args[0])
		checkError(err)
		t.Index()
		lca, err := t.LCA(args[1:]...)
		checkError(err)
		fmt.Println(lca)
	},
}

// utilsAncestorsCmd prints a name's ancestor set, one per line (order
// follows Tree.Ancestors' map, not root-to-leaf) — a thin wrapper used
// mostly for debugging a tree interactively, the same role unikmer's
// "utils" subcommands play for inspecting a .unik file.
var utilsAncestorsCmd = &cobra.Command{
	Use:   "ancestors tree.nw name",
	Short: "Print the ancestor set of a named node",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			checkError(fmt.Errorf("utils ancestors: expected a tree file and one node name"))
		}
		t, err := tree.Load(args[0])
		checkError(err)
		t.Index()
		anc, err := t.Ancestors(args[1])
		checkError(err)
		names := make([]string, 0, len(anc))
		for n := range anc {
			names = append(names, n)
		}
		fmt.Fprintln(os.Stdout, strings.Join(names, "\n"))
	},
}

func init() {
	RootCmd.AddCommand(utilsCmd)
	utilsCmd.AddCommand(utilsMinimalCmd)
	utilsCmd.AddCommand(utilsNewick2NHXCmd)
	utilsCmd.AddCommand(utilsLCACmd)
	utilsCmd.AddCommand(utilsAncestorsCmd)
}
