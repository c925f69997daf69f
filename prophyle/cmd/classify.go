package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karel-brinda/prophyle-go/assign"
	"github.com/karel-brinda/prophyle-go/output"
	"github.com/karel-brinda/prophyle-go/tree"
)

var classifyCmd = &cobra.Command{
	Use:   "classify tree.nw blocks.tsv",
	Short: "Assign reads to tree nodes from a decoded block stream",
	Long: `classify reads the per-read candidate-block stream produced by an
external index query tool (out of scope here, spec §1), scores every
candidate node per read (package assign) and renders the winner(s) as
either SAM-like or Kraken-like records (package output).`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if len(args) != 2 {
			checkError(fmt.Errorf("classify: expected a tree file and a block-stream file argument, got %d", len(args)))
		}
		treePath := args[0]
		blockPath := args[1]

		k := getFlagPositiveInt(cmd, "k")
		measure := assign.Measure(getFlagString(cmd, "measure"))
		format := getFlagString(cmd, "format")
		mimicKraken := getFlagBool(cmd, "mimic-kraken")
		tieLCA := getFlagBool(cmd, "tie-lca")
		annotate := getFlagBool(cmd, "annotate")
		simulateLCA := mimicKraken || getFlagBool(cmd, "simulate-lca")

		switch measure {
		case assign.MeasureH1, assign.MeasureH2, assign.MeasureC1, assign.MeasureC2:
		default:
			checkError(fmt.Errorf("-m/--measure must be one of h1,h2,c1,c2, got %q", measure))
		}
		if mimicKraken {
			measure = assign.MeasureH1
			format = "kraken"
		}
		switch format {
		case "sam", "kraken":
		default:
			checkError(fmt.Errorf("-f/--format must be sam or kraken, got %q", format))
		}

		if opt.Verbose {
			log.Infof("prophyle v%s", VERSION)
			log.Infof("loading tree: %s", treePath)
		}
		t, err := tree.Load(treePath)
		checkError(err)
		t.Index()

		assign.Warnf = log.Warningf

		cfg := assign.Config{
			Tree:        t,
			K:           k,
			Measure:     measure,
			SimulateLCA: simulateLCA,
			TieLCA:      tieLCA,
		}
		eng := &assign.Engine{Cfg: cfg}

		var emit func(asg *assign.Assignment) error
		switch format {
		case "kraken":
			w := &output.KrakenWriter{W: os.Stdout, Tree: t, SimulateLCA: simulateLCA}
			emit = func(asg *assign.Assignment) error { return w.WriteAssignment(asg.Record, asg) }
		default:
			w := &output.SAMWriter{W: os.Stdout, Tree: t, K: k, Annotate: annotate}
			checkError(w.WriteHeader())
			emit = func(asg *assign.Assignment) error { return w.WriteAssignment(asg.Record, asg) }
		}

		err = eng.Run(blockPath, opt.NumCPUs, 0, emit)
		checkError(err)
	},
}

func init() {
	RootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().IntP("k", "k", 21, "k-mer length (must match the index)")
	classifyCmd.Flags().StringP("measure", "m", "h1", "assignment measure: h1, h2, c1, or c2")
	classifyCmd.Flags().StringP("format", "f", "sam", "output format: sam or kraken")
	classifyCmd.Flags().BoolP("mimic-kraken", "M", false, "mimic Kraken's output: forces -f kraken, -m h1 and --simulate-lca")
	classifyCmd.Flags().BoolP("simulate-lca", "X", false, "collapse each block's candidates to their LCA before scoring")
	classifyCmd.Flags().BoolP("tie-lca", "L", false, "collapse a tied winner set to its LCA")
	classifyCmd.Flags().BoolP("annotate", "A", false, "append gi/ti/sn/ra tree-annotation tags to SAM records")
	classifyCmd.Flags().BoolP("no-rolling-window", "R", false, "disabled: rolling-window query is performed by the external index query tool, not this command")
}
