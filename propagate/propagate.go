// Package propagate implements the post-order k-mer propagation engine:
// reducing each leaf's canonical k-mer set through the tree so that every
// internal node ends up owning exactly the k-mers common to all of its
// descendants, and every descendant keeps only its residual.
//
// The fork-join synchronization (a node may only be processed after every
// child has finished) is built on golang.org/x/sync/errgroup, the pattern
// grounded on the worker/collector errgroup shape in gnames-gndb's
// hierarchy populator; a node's own intersection step runs only after
// errgroup.Wait returns for all of its children, giving the "synchronize at
// every internal node" requirement for free instead of a hand-rolled
// WaitGroup/channel fan-in.
package propagate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"

	"github.com/karel-brinda/prophyle-go/kmer"
	"github.com/karel-brinda/prophyle-go/tree"
)

// ErrMissingFasta is returned when a leaf's fastapath names a file that
// cannot be read (spec §4.3: "Missing leaf FASTA → fatal, aborts the
// entire build").
var ErrMissingFasta = errors.New("propagate: missing leaf fasta")

// Engine drives the post-order reduction over a minimal subtree.
type Engine struct {
	Tree       *tree.Tree
	K          int
	Workers    int
	Deletative bool // false selects the non-deletative mode (§4.3 step 3)
	// Reassemble selects greedy unitig assembly instead of one contig per
	// k-mer, for the nodes that non-deletative mode flags in
	// Result.Reassembled (internal nodes); every other node is emitted one
	// contig per k-mer.
	Reassemble bool

	// MaskRepeats applies spec §4.3's optional repeat-masking filter: any
	// soft-masked (lowercase) base is replaced with 'N' before k-mer
	// extraction, so repeat-covered windows are silently skipped the same
	// way a non-ACGT byte already is.
	MaskRepeats bool

	// OutDir, when set, receives the per-node .full.fa/.reduced.fa/
	// .count.tsv artifacts of §6.1. When it is empty, Run still reads the
	// leaf FASTA files but writes nothing. propagate_test.go bypasses Run
	// and calls PropagateSets directly.
	OutDir string

	// Verbose shows an mpb progress bar over post-order node emission
	// (§5's "walk the tree post-order" stage, mirrored on the write side),
	// the same mpb.Progress/decor.EwmaETA shape LexicMap's buildAnIndex
	// uses for its own per-file progress bar.
	Verbose bool
}

// Result carries per-node outcomes of a propagation run.
type Result struct {
	Residual map[int32]kmer.Set // R(v) for every node, by arena index
	Reassembled map[int32]bool  // true where the non-deletative flag was set
}

// Run loads every leaf's k-mer set from its fastapath, propagates, and (if
// OutDir is set) writes the §6.1 per-node artifacts.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	leaves := make([]int32, 0)
	for _, v := range e.Tree.PostOrder() {
		if e.Tree.Nodes[v].IsLeaf() {
			leaves = append(leaves, v)
		}
	}

	leafSets := make(map[int32]kmer.Set, len(leaves))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)
	var mu sync.Mutex
	for _, v := range leaves {
		v := v
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			set, err := e.loadLeaf(gctx, v)
			if err != nil {
				return err
			}
			mu.Lock()
			leafSets[v] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := e.PropagateSets(ctx, leafSets)
	if err != nil {
		return nil, err
	}

	if e.OutDir != "" {
		if err := e.emitAll(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// loadLeaf reads the "@"-separated fastapath for a leaf and returns the
// union of canonical k-mer sets extracted from every file in it.
func (e *Engine) loadLeaf(ctx context.Context, v int32) (kmer.Set, error) {
	node := &e.Tree.Nodes[v]
	if node.FastaPath == "" {
		return kmer.NewSet(0), nil
	}
	set := kmer.NewSet(0)
	for _, path := range strings.Split(node.FastaPath, "@") {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := addFileKmers(path, e.K, set, e.MaskRepeats); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrMissingFasta, node.Name, err)
		}
	}
	return set, nil
}

func addFileKmers(path string, k int, set kmer.Set, maskRepeats bool) error {
	reader, err := fastx.NewDefaultReader(path)
	if err != nil {
		return err
	}
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		seq := record.Seq.Seq
		if maskRepeats {
			seq = maskLowercase(seq)
		}
		sub, err := kmer.ExtractCanonicalSet(seq, k)
		if err != nil {
			return err
		}
		for code := range sub {
			set[code] = struct{}{}
		}
	}
	return nil
}

// maskLowercase replaces every soft-masked (lowercase) base with 'N',
// leaving uppercase bases untouched, so k-mer extraction's existing
// non-ACGT skip rule doubles as the repeat-masking filter.
func maskLowercase(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		if b >= 'a' && b <= 'z' {
			out[i] = 'N'
		} else {
			out[i] = b
		}
	}
	return out
}

// PropagateSets runs the pure post-order reduction (§4.3 steps 1-6) over
// already-loaded leaf sets, independent of any file I/O. Internal-node
// intersections run only after every child subtree's errgroup.Go has
// returned.
func (e *Engine) PropagateSets(ctx context.Context, leafSets map[int32]kmer.Set) (*Result, error) {
	res := &Result{
		Residual:    make(map[int32]kmer.Set, len(e.Tree.Nodes)),
		Reassembled: make(map[int32]bool),
	}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var mu sync.Mutex

	var process func(ctx context.Context, v int32) (kmer.Set, error)
	process = func(ctx context.Context, v int32) (kmer.Set, error) {
		node := &e.Tree.Nodes[v]
		if node.IsLeaf() {
			set, ok := leafSets[v]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingFasta, node.Name)
			}
			mu.Lock()
			res.Residual[v] = set
			mu.Unlock()
			return set, nil
		}

		childSets := make([]kmer.Set, len(node.Children))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range node.Children {
			i, c := i, c
			sem <- struct{}{}
			g.Go(func() error {
				defer func() { <-sem }()
				s, err := process(gctx, c)
				if err != nil {
					return err
				}
				childSets[i] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		inter := intersectAll(childSets)

		if e.Deletative {
			for _, s := range childSets {
				s.SubtractInPlace(inter)
			}
		} else {
			res.Reassembled[v] = true
		}

		mu.Lock()
		res.Residual[v] = inter
		mu.Unlock()
		return inter, nil
	}

	if len(e.Tree.Nodes) > 0 {
		if _, err := process(ctx, e.Tree.Root); err != nil {
			return nil, err
		}
	}

	// KmersFull must reflect each node's true final residual R(v), which
	// for a deletative-mode non-root node isn't settled until its parent
	// has subtracted its own intersection from the child's set (childSets
	// above alias res.Residual's maps and are mutated in place). Reading
	// the length only now, after the whole traversal has completed,
	// avoids capturing the pre-subtraction I(v) instead of R(v).
	for v, set := range res.Residual {
		e.Tree.Nodes[v].KmersFull = uint64(len(set))
	}
	return res, nil
}

func intersectAll(sets []kmer.Set) kmer.Set {
	if len(sets) == 0 {
		return kmer.NewSet(0)
	}
	acc := sets[0].Clone()
	for _, s := range sets[1:] {
		acc = acc.Intersect(s)
	}
	return acc
}

// emitAll writes the §6.1 per-node artifacts (.full.fa for leaves,
// .reduced.fa and .count.tsv for every node) under e.OutDir, in post-order.
func (e *Engine) emitAll(res *Result) error {
	if err := os.MkdirAll(e.OutDir, 0755); err != nil {
		return err
	}
	order := e.Tree.PostOrder()

	var bar *mpb.Bar
	var pbs *mpb.Progress
	if e.Verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(order)),
			mpb.PrependDecorators(
				decor.Name("propagating: ", decor.WC{W: len("propagating: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 10),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
		defer pbs.Wait()
	}

	for _, v := range order {
		node := &e.Tree.Nodes[v]
		if node.Name == "" {
			if bar != nil {
				bar.Increment()
			}
			continue
		}

		if node.IsLeaf() && node.FastaPath != "" {
			if err := copyFullFasta(filepath.Join(e.OutDir, node.Name+".full.fa"), node.FastaPath); err != nil {
				return err
			}
		}

		set := res.Residual[v]

		var contigs [][]byte
		if e.Reassemble && res.Reassembled[v] {
			contigs = AssembleUnitigs(set.Clone(), e.K)
		} else {
			contigs = oneContigPerKmer(set, e.K)
		}
		if err := writeFasta(filepath.Join(e.OutDir, node.Name+".reduced.fa"), node.Name, contigs); err != nil {
			return err
		}
		if err := WriteCountFile(filepath.Join(e.OutDir, node.Name+".count.tsv"), node.Name, len(set)); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

// oneContigPerKmer renders set as one contig per k-mer, in sorted code
// order so that index.fa's concatenation (§4.4 stage 2) is deterministic
// across runs regardless of map iteration order.
func oneContigPerKmer(set kmer.Set, k int) [][]byte {
	codes := set.SortedCodes()
	out := make([][]byte, len(codes))
	for i, code := range codes {
		out[i] = kmer.Decode(code, k)
	}
	return out
}

// copyFullFasta concatenates every "@"-separated input file named by
// fastapath into a single <node>.full.fa, the raw pre-propagation sequence
// the §6.1 layout expects alongside the reduced set.
func copyFullFasta(dst, fastaPath string) error {
	w, err := xopen.Wopen(dst)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, path := range strings.Split(fastaPath, "@") {
		r, err := xopen.Ropen(path)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(w, r)
		r.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}

func writeFasta(path, nodeName string, contigs [][]byte) error {
	w, err := xopen.Wopen(path)
	if err != nil {
		return err
	}
	defer w.Close()
	for i, c := range contigs {
		if _, err := fmt.Fprintf(w, ">%s_%d\n%s\n", nodeName, i, c); err != nil {
			return err
		}
	}
	return nil
}
