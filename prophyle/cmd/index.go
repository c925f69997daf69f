package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/karel-brinda/prophyle-go/index"
	"github.com/karel-brinda/prophyle-go/kmer"
	"github.com/karel-brinda/prophyle-go/tree"
)

var indexCmd = &cobra.Command{
	Use:   "index tree.nw -o index_dir",
	Short: "Build a phylogenetic k-mer index from a tree and reference genomes",
	Long: `index builds a prophyle index: propagates k-mers through the tree
(package propagate), concatenates the result into index.fa, and drives the
external BWT/SA/k-LCP builders (package index) over it. Re-running with
unchanged inputs and no -f/--force is a no-op (spec §8 invariant 6).`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		if len(args) != 1 {
			checkError(fmt.Errorf("index: expected exactly one tree file argument, got %d", len(args)))
		}
		treePath := args[0]

		k := getFlagPositiveInt(cmd, "k")
		if k > kmer.MaxSmallK {
			checkError(fmt.Errorf("-k/--k must be <= %d, got %d", kmer.MaxSmallK, k))
		}
		outDir := getFlagString(cmd, "out-dir")
		if outDir == "" {
			checkError(fmt.Errorf("-o/--out-dir is required"))
		}
		nondeletative := getFlagBool(cmd, "nondeletative")
		reassemble := getFlagBool(cmd, "reassemble")
		maskRepeats := getFlagBool(cmd, "mask-repeats")
		skipKLCP := getFlagBool(cmd, "skip-klcp")
		keepTemp := getFlagBool(cmd, "keep-temp")
		force := getFlagBool(cmd, "force")
		subsample := getFlagFloat64(cmd, "subsample")
		seed := getFlagInt(cmd, "subsample-seed")

		if subsample <= 0 || subsample > 1 {
			checkError(fmt.Errorf("-s/--subsample must be in (0, 1], got %v", subsample))
		}

		if opt.Verbose {
			log.Infof("prophyle v%s", VERSION)
			log.Infof("loading tree: %s", treePath)
		}
		t, err := tree.Load(treePath)
		checkError(err)

		if subsample < 1 {
			if opt.Verbose {
				log.Infof("subsampling tree at rate %v (seed %d)", subsample, seed)
			}
			t = t.Subsample(subsample, rand.New(rand.NewSource(int64(seed))))
		}

		orch := &index.Orchestrator{
			Dir:         outDir,
			Tree:        t,
			K:           k,
			Workers:     opt.NumCPUs,
			Deletative:  !nondeletative,
			Reassemble:  reassemble,
			MaskRepeats: maskRepeats,
			Force:       force,
			Verbose:     opt.Verbose,
			KeepTemp:    keepTemp,
			SkipKLCP:    skipKLCP,
			Tools:       index.DefaultTools(),
		}

		start := time.Now()
		ctx := context.Background()
		checkError(orch.Build(ctx))

		if !skipKLCP {
			checkError(index.CheckConsistency(outDir, k))
		}

		if opt.Verbose {
			summary, err := index.Summary(outDir, k)
			checkError(err)
			fmt.Fprint(os.Stderr, summary)
			log.Infof("index built in %s", time.Since(start))
		}
	},
}

func init() {
	RootCmd.AddCommand(indexCmd)

	indexCmd.Flags().IntP("k", "k", 21, "k-mer length (1 <= k <= 32)")
	indexCmd.Flags().StringP("out-dir", "o", "", "output index directory")
	indexCmd.Flags().Bool("nondeletative", false, "keep every child's full k-mer set instead of subtracting the parent's intersection (§4.3 non-deletative mode)")
	indexCmd.Flags().BoolP("reassemble", "r", false, "with --nondeletative, greedily re-assemble each internal node's k-mers into unitigs instead of one contig per k-mer")
	indexCmd.Flags().BoolP("mask-repeats", "M", false, "replace soft-masked (lowercase) bases with N before k-mer extraction")
	indexCmd.Flags().BoolP("skip-klcp", "K", false, "don't build the k-LCP array, and skip the artifact consistency check")
	indexCmd.Flags().BoolP("keep-temp", "T", false, "keep the propagation/ intermediate directory after indexing")
	indexCmd.Flags().BoolP("force", "f", false, "rebuild from stage 1 even if markers look fresh")
	indexCmd.Flags().Float64P("subsample", "s", 1, "tree subsampling rate in (0, 1]")
	indexCmd.Flags().Int("subsample-seed", 1, "PRNG seed for -s/--subsample")
}
