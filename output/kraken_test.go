package output

import (
	"strings"
	"testing"

	"github.com/karel-brinda/prophyle-go/assign"
	"github.com/karel-brinda/prophyle-go/block"
)

func TestKrakenWriterUnassigned(t *testing.T) {
	tr := testTree(t)
	var b strings.Builder
	w := &KrakenWriter{W: &b, Tree: tr.Tree}
	rec := &block.Record{QName: "r1", QLen: 2}
	if err := w.WriteAssignment(rec, nil); err != nil {
		t.Fatalf("WriteAssignment: %s", err)
	}
	fields := strings.Split(strings.TrimSpace(b.String()), "\t")
	if fields[0] != "U" || fields[2] != "0" {
		t.Errorf("unassigned kraken record = %v", fields)
	}
}

// TestKrakenWriterSimulateLCA reproduces spec §8 scenario E5: blocks
// "A,B:2 A:1 0:1" with simulate_lca on collapse the first block to the
// tree LCA(A,B)=X.
func TestKrakenWriterSimulateLCA(t *testing.T) {
	tr := testTree(t)
	tr.Tree.Nodes[tr.idx("X")].Taxid = "100"

	var b strings.Builder
	w := &KrakenWriter{W: &b, Tree: tr.Tree, SimulateLCA: true}
	rec := &block.Record{
		QName: "r1",
		QLen:  9,
		Blocks: []block.Block{
			{Candidates: block.CandidateSet{Kind: block.KindNodes, Names: []string{"A", "B"}}, Count: 2},
			{Candidates: block.CandidateSet{Kind: block.KindNodes, Names: []string{"A"}}, Count: 1},
			{Candidates: block.CandidateSet{Kind: block.KindNoHit}, Count: 1},
		},
	}
	asg := &assign.Assignment{
		Record: rec,
		Result: &assign.TieResult{
			HFamilyPresent: true, CFamilyPresent: true,
			Winners: []*assign.Score{{Name: "X", H1: 2, Ln: 9}},
		},
	}
	if err := w.WriteAssignment(rec, asg); err != nil {
		t.Fatalf("WriteAssignment: %s", err)
	}
	line := strings.TrimSpace(b.String())
	want := "C\tr1\t100\t9\t100:2 A:1 0:1"
	if line != want {
		t.Errorf("kraken line = %q, want %q", line, want)
	}
}
