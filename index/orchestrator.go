// Package index drives the five-stage index build of spec §4.4: tree
// normalization, propagation + concatenation, and the three external
// BWT/SA/k-LCP build stages, each guarded by an idempotent completion
// marker and a freshness check against the previous stage.
package index

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
	"golang.org/x/sync/errgroup"

	"github.com/karel-brinda/prophyle-go/propagate"
	"github.com/karel-brinda/prophyle-go/tree"
)

const lastStage = 5

// ErrConsistency is returned by CheckConsistency when the FM-index
// artifact sizes don't line up per §6.1.
var ErrConsistency = errors.New("index: artifact size consistency check failed")

// Orchestrator drives the build over a single index directory.
type Orchestrator struct {
	Dir string

	Tree        *tree.Tree // preliminary, not-yet-minimalized input tree
	K           int
	Workers     int
	Deletative  bool
	Reassemble  bool
	MaskRepeats bool
	Force       bool
	Verbose     bool
	KeepTemp    bool // -T: keep propagation/ around after index.fa is concatenated
	SkipKLCP    bool // -K: don't build the k-LCP array at all (§6.4)

	Tools Tools
}

// Build runs every stage not already fresh, per the §4.4 freshness rule.
// Invariant 6 (idempotence): calling Build again with nothing changed and
// Force unset touches no files.
func (o *Orchestrator) Build(ctx context.Context) error {
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return err
	}
	if o.Force {
		if err := clearFrom(o.Dir, 1, lastStage); err != nil {
			return err
		}
	}

	minTree, err := o.stage1()
	if err != nil {
		return err
	}
	if err := o.stage2(ctx, minTree); err != nil {
		return err
	}
	if err := o.stage3(ctx); err != nil {
		return err
	}
	if err := o.stage45(ctx); err != nil {
		return err
	}

	infoPath := filepath.Join(o.Dir, FileInfo)
	info := &Info{
		MainVersion: 1,
		K:           o.K,
		Deletative:  o.Deletative,
		Reassemble:  o.Reassemble,
		Workers:     o.Workers,
	}
	if old, err := ReadInfo(infoPath); err == nil && *old == *info {
		return nil
	}
	return WriteInfo(infoPath, info)
}

func (o *Orchestrator) preliminaryPath() string { return filepath.Join(o.Dir, "tree.preliminary.nw") }
func (o *Orchestrator) treePath() string        { return filepath.Join(o.Dir, "tree.nw") }
func (o *Orchestrator) propDir() string         { return filepath.Join(o.Dir, "propagation") }
func (o *Orchestrator) indexFa() string         { return filepath.Join(o.Dir, "index.fa") }
func (o *Orchestrator) statsFile() string       { return o.indexFa() + ".kmers.tsv" }

// stage1: merge/validate input trees into one normalized (minimal) tree.
func (o *Orchestrator) stage1() (*tree.Tree, error) {
	fresh, err := stageFresh(o.Dir, 1)
	if err != nil {
		return nil, err
	}
	if fresh {
		return tree.Load(o.treePath())
	}
	if err := clearFrom(o.Dir, 1, lastStage); err != nil {
		return nil, err
	}

	if err := tree.Write(o.Tree, o.preliminaryPath()); err != nil {
		return nil, err
	}
	minTree := o.Tree.MinimalSubtree()
	minTree.Index()
	if err := tree.Write(minTree, o.treePath()); err != nil {
		return nil, err
	}
	if err := markComplete(o.Dir, 1); err != nil {
		return nil, err
	}
	return minTree, nil
}

// stage2: drive the propagation engine, then concatenate every node's
// reduced FASTA (post-order of T') into index.fa and its counts into the
// merged stats file.
func (o *Orchestrator) stage2(ctx context.Context, minTree *tree.Tree) error {
	fresh, err := stageFresh(o.Dir, 2)
	if err != nil {
		return err
	}
	if fresh {
		return nil
	}
	if err := clearFrom(o.Dir, 2, lastStage); err != nil {
		return err
	}

	eng := &propagate.Engine{
		Tree:        minTree,
		K:           o.K,
		Workers:     o.Workers,
		Deletative:  o.Deletative,
		Reassemble:  o.Reassemble,
		MaskRepeats: o.MaskRepeats,
		OutDir:      o.propDir(),
		Verbose:     o.Verbose,
	}
	if _, err := eng.Run(ctx); err != nil {
		return err
	}

	// Propagation is what populates Node.KmersFull (propagate.Engine.Run);
	// tree.nw was written by stage 1 before that happened, so it must be
	// rewritten here or classify would load a tree with kmers_full always
	// absent (spec §3 / invariant 7).
	if err := tree.Write(minTree, o.treePath()); err != nil {
		return err
	}

	if err := o.concatenateFasta(minTree); err != nil {
		return err
	}
	if err := o.concatenateStats(minTree); err != nil {
		return err
	}
	if err := markComplete(o.Dir, 2); err != nil {
		return err
	}
	if !o.KeepTemp {
		if err := os.RemoveAll(o.propDir()); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) concatenateFasta(minTree *tree.Tree) error {
	w, err := xopen.Wopen(o.indexFa())
	if err != nil {
		return err
	}
	defer w.Close()
	for _, v := range minTree.PostOrder() {
		name := minTree.Nodes[v].Name
		if name == "" {
			continue
		}
		if err := appendFile(w, filepath.Join(o.propDir(), name+".reduced.fa")); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) concatenateStats(minTree *tree.Tree) error {
	w, err := xopen.Wopen(o.statsFile())
	if err != nil {
		return err
	}
	defer w.Close()
	for _, v := range minTree.PostOrder() {
		name := minTree.Nodes[v].Name
		if name == "" {
			continue
		}
		if err := appendFile(w, filepath.Join(o.propDir(), name+".count.tsv")); err != nil {
			return err
		}
	}
	return nil
}

func appendFile(w io.Writer, path string) error {
	r, err := xopen.Ropen(path)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}

// stage3: invoke the external BWT/SA builder's fa2pac/pac2bwt/bwt-occ
// steps over index.fa (§6.3). This module does not reimplement BWT
// construction (explicitly out of scope per spec §1).
func (o *Orchestrator) stage3(ctx context.Context) error {
	fresh, err := stageFresh(o.Dir, 3)
	if err != nil {
		return err
	}
	if fresh {
		return nil
	}
	if err := clearFrom(o.Dir, 3, lastStage); err != nil {
		return err
	}

	fa := o.indexFa()
	if err := run(ctx, o.Tools.Fa2Pac, fa, fa); err != nil {
		return err
	}
	if err := run(ctx, o.Tools.Pac2Bwt, fa+".pac"); err != nil {
		return err
	}
	if err := run(ctx, o.Tools.BwtOcc, fa+".bwt"); err != nil {
		return err
	}
	return markComplete(o.Dir, 3)
}

// stage45 produces the sampled suffix array (stage 4) and the k-LCP array
// (stage 5), which §4.4 allows running in parallel since neither reads the
// other's output. SkipKLCP (-K) drops stage 5 entirely, per §6.4; callers
// must then also skip CheckConsistency, since there is no .klcp to check.
func (o *Orchestrator) stage45(ctx context.Context) error {
	fresh4, err := stageFresh(o.Dir, 4)
	if err != nil {
		return err
	}
	fresh5 := true
	if !o.SkipKLCP {
		fresh5, err = stageFresh(o.Dir, 5)
		if err != nil {
			return err
		}
	}
	if fresh4 && fresh5 {
		return nil
	}

	fa := o.indexFa()
	g, gctx := errgroup.WithContext(ctx)
	if !fresh4 {
		g.Go(func() error {
			if err := clearFrom(o.Dir, 4, 4); err != nil {
				return err
			}
			if err := run(gctx, o.Tools.Bwt2Sa, fa+".bwt"); err != nil {
				return err
			}
			return markComplete(o.Dir, 4)
		})
	}
	if !o.SkipKLCP && !fresh5 {
		g.Go(func() error {
			if err := clearFrom(o.Dir, 5, 5); err != nil {
				return err
			}
			if err := run(gctx, o.Tools.KLCP, fa+".bwt", fmt.Sprint(o.K)); err != nil {
				return err
			}
			return markComplete(o.Dir, 5)
		})
	}
	return g.Wait()
}

// CheckConsistency validates the §6.1 byte-size relation between the FM-
// index artifacts: |bwt| ≈ 2·|sa| ≈ 2·|pac| ≈ 4·|klcp| (±1 KiB).
func CheckConsistency(dir string, k int) error {
	fa := filepath.Join(dir, "index.fa")
	sizes := map[string]int64{}
	for label, suffix := range map[string]string{
		"bwt":  ".bwt",
		"sa":   ".sa",
		"pac":  ".pac",
		"klcp": fmt.Sprintf(".%d.klcp", k),
	} {
		info, err := os.Stat(fa + suffix)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrConsistency, err)
		}
		sizes[label] = info.Size()
	}

	const tolerance = 1024
	check := func(a, b int64, factor float64) error {
		want := float64(a) * factor
		if diff := want - float64(b); diff > tolerance || diff < -tolerance {
			return fmt.Errorf("%w: expected |%v|≈%.0f, got %v", ErrConsistency, a, want, b)
		}
		return nil
	}
	if err := check(sizes["bwt"], sizes["sa"], 0.5); err != nil {
		return err
	}
	if err := check(sizes["bwt"], sizes["pac"], 0.5); err != nil {
		return err
	}
	if err := check(sizes["bwt"], sizes["klcp"], 0.25); err != nil {
		return err
	}
	return nil
}

// Summary renders a one-line-per-artifact, human-readable size report for
// dir's index.fa and its FM-index siblings, the same humanize.Comma-style
// byte-count formatting unikmer's own "info"/"stats" subcommands use for
// their result tables.
func Summary(dir string, k int) (string, error) {
	fa := filepath.Join(dir, "index.fa")
	labels := []struct{ name, suffix string }{
		{"index.fa", ""},
		{"pac", ".pac"},
		{"bwt", ".bwt"},
		{"sa", ".sa"},
		{"klcp", fmt.Sprintf(".%d.klcp", k)},
	}
	var b strings.Builder
	for _, l := range labels {
		info, err := os.Stat(fa + l.suffix)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%-10s %12s bytes\n", l.name, humanize.Comma(info.Size()))
	}
	return b.String(), nil
}
