package propagate

import (
	"context"
	"testing"

	"github.com/karel-brinda/prophyle-go/kmer"
	"github.com/karel-brinda/prophyle-go/tree"
)

func mustExtract(t *testing.T, seq string, k int) kmer.Set {
	t.Helper()
	set, err := kmer.ExtractCanonicalSet([]byte(seq), k)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

// TestE1Propagation implements spec §8 scenario E1: tree ((A,B)X,C)R;,
// k=3, verifying the residual set at every node. With canonical k-mers,
// A=ACGT contributes only ACG (canonical form of both ACG and CGT), which
// B shares, so X owns ACG and R(A) is empty.
func TestE1Propagation(t *testing.T) {
	tr, err := tree.ParseNewick("((A,B)X,C)R;")
	if err != nil {
		t.Fatal(err)
	}

	leafSets := map[int32]kmer.Set{}
	for name, seq := range map[string]string{"A": "ACGT", "B": "ACGA", "C": "TTTT"} {
		idx, err := tr.NameLookup(name)
		if err != nil {
			t.Fatal(err)
		}
		leafSets[idx] = mustExtract(t, seq, 3)
	}

	e := &Engine{Tree: tr, K: 3, Workers: 2, Deletative: true}
	res, err := e.PropagateSets(context.Background(), leafSets)
	if err != nil {
		t.Fatal(err)
	}

	check := func(name string, want ...string) {
		idx, err := tr.NameLookup(name)
		if err != nil {
			t.Fatal(err)
		}
		got := res.Residual[idx]
		wantSet := mustExtract(t, "", 3)
		for _, w := range want {
			code, err := kmer.Encode([]byte(w))
			if err != nil {
				t.Fatal(err)
			}
			wantSet.Add(kmer.Canonical(code, 3))
		}
		if len(got) != len(wantSet) {
			t.Errorf("R(%s) = %v (len %d), want len %d", name, got, len(got), len(wantSet))
			return
		}
		for code := range wantSet {
			if !got.Has(code) {
				t.Errorf("R(%s) missing expected k-mer code %d", name, code)
			}
		}
		// KmersFull must match the true, post-subtraction residual, not
		// the intersection as it stood before a node's own parent (if
		// any) subtracted its share from it.
		if kf := tr.Nodes[idx].KmersFull; kf != uint64(len(wantSet)) {
			t.Errorf("KmersFull(%s) = %d, want %d", name, kf, len(wantSet))
		}
	}

	check("X", "ACG")
	check("A")
	check("B", "CGA")
	check("C", "TTT")
	check("R")
}

// TestPropagationConservation checks invariant 2 (§8): total residual size
// equals the size of the union of leaf sets, in deletative mode.
func TestPropagationConservation(t *testing.T) {
	tr, err := tree.ParseNewick("((A,B)X,C)R;")
	if err != nil {
		t.Fatal(err)
	}
	leafSets := map[int32]kmer.Set{}
	union := kmer.NewSet(0)
	for name, seq := range map[string]string{"A": "ACGTACG", "B": "ACGACGT", "C": "TTTTGGG"} {
		idx, err := tr.NameLookup(name)
		if err != nil {
			t.Fatal(err)
		}
		s := mustExtract(t, seq, 3)
		leafSets[idx] = s
		for code := range s {
			union.Add(code)
		}
	}

	e := &Engine{Tree: tr, K: 3, Workers: 4, Deletative: true}
	res, err := e.PropagateSets(context.Background(), leafSets)
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	for _, s := range res.Residual {
		total += len(s)
	}
	if total != len(union) {
		t.Errorf("sum of |R(v)| = %d, want %d (|union of leaf sets|)", total, len(union))
	}
}

func TestAssembleUnitigsSingleContig(t *testing.T) {
	set := mustExtract(t, "ACGTACGTAC", 4)
	contigs := AssembleUnitigs(set.Clone(), 4)
	if len(contigs) != 1 {
		t.Errorf("got %d contigs %q, want 1", len(contigs), contigs)
	}
	total := 0
	for _, c := range contigs {
		total += len(c) - 3
	}
	if total != len(set) {
		t.Errorf("assembled k-mer count = %d, want %d", total, len(set))
	}
}
