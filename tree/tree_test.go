package tree

import "testing"

func mustLoad(t *testing.T, nwk string) *Tree {
	t.Helper()
	tr, err := ParseNewick(nwk)
	if err != nil {
		t.Fatalf("ParseNewick(%q): %v", nwk, err)
	}
	return tr
}

func TestParseNewickE1Shape(t *testing.T) {
	tr := mustLoad(t, "((A,B)X,C)R;")
	if tr.Nodes[tr.Root].Name != "R" {
		t.Fatalf("root name = %q, want R", tr.Nodes[tr.Root].Name)
	}
	for _, name := range []string{"A", "B", "X", "C", "R"} {
		if _, err := tr.NameLookup(name); err != nil {
			t.Errorf("missing node %q", name)
		}
	}
	x, _ := tr.NameLookup("X")
	if len(tr.Nodes[x].Children) != 2 {
		t.Errorf("X should have 2 children, got %d", len(tr.Nodes[x].Children))
	}
}

func TestNewickRoundTrip(t *testing.T) {
	tr := mustLoad(t, "((A:0.1,B:0.2)X,C)R;")
	a, _ := tr.NameLookup("A")
	tr.Nodes[a].KmersFull = 42
	tr.Nodes[a].FastaPath = "a.fa"

	out := tr.Newick()
	tr2, err := ParseNewick(out)
	if err != nil {
		t.Fatalf("round-trip parse failed on %q: %v", out, err)
	}
	a2, err := tr2.NameLookup("A")
	if err != nil {
		t.Fatal(err)
	}
	if tr2.Nodes[a2].KmersFull != 42 {
		t.Errorf("kmers_full not preserved: got %d", tr2.Nodes[a2].KmersFull)
	}
	if tr2.Nodes[a2].FastaPath != "a.fa" {
		t.Errorf("fastapath not preserved: got %q", tr2.Nodes[a2].FastaPath)
	}
	if _, err := tr2.NameLookup("R"); err != nil {
		t.Errorf("root name not preserved")
	}
}

// TestMinimalSubtreeContractsUnary covers spec §8: a node with a single
// child after tree load is contracted by minimal_subtree; its name is
// absent from the resulting tree.
func TestMinimalSubtreeContractsUnary(t *testing.T) {
	tr := mustLoad(t, "(((A,B)X)Y,C)R;")
	m := tr.MinimalSubtree()

	if _, err := m.NameLookup("Y"); err == nil {
		t.Errorf("unary node Y should have been contracted away")
	}
	for _, name := range []string{"A", "B", "X", "C", "R"} {
		if _, err := m.NameLookup(name); err != nil {
			t.Errorf("node %q missing after minimal_subtree", name)
		}
	}
	x, _ := m.NameLookup("X")
	if m.Nodes[x].Parent == NoNode {
		t.Fatal("X should still have a parent")
	}
	parentName := m.Nodes[m.Nodes[x].Parent].Name
	if parentName != "R" {
		t.Errorf("X's parent after contraction = %q, want R", parentName)
	}
}

// TestMinimalSubtreeKeepsUnaryRoot: the root is kept even if it has a
// single child (spec §3's invariant carve-out).
func TestMinimalSubtreeKeepsUnaryRoot(t *testing.T) {
	tr := mustLoad(t, "((A,B)X)R;")
	m := tr.MinimalSubtree()
	if m.Nodes[m.Root].Name != "R" {
		t.Fatalf("root contracted away, got root name %q", m.Nodes[m.Root].Name)
	}
	if len(m.Nodes[m.Root].Children) != 1 {
		t.Fatalf("root should keep its single child, has %d children", len(m.Nodes[m.Root].Children))
	}
}

func TestLCA(t *testing.T) {
	tr := mustLoad(t, "((A,B)X,C)R;")
	tr.Index()

	got, err := tr.LCA("A", "B")
	if err != nil {
		t.Fatal(err)
	}
	if got != "X" {
		t.Errorf("lca(A,B) = %q, want X", got)
	}

	got, err = tr.LCA("A", "C")
	if err != nil {
		t.Fatal(err)
	}
	if got != "R" {
		t.Errorf("lca(A,C) = %q, want R", got)
	}
}

// TestLCARootRewrite: when the computed LCA is the root and the root has
// exactly one child, the rewrite substitutes that child (spec §4.2).
func TestLCARootRewrite(t *testing.T) {
	tr := mustLoad(t, "((A,B)X)R;")
	tr.Index()

	got, err := tr.LCA("A")
	if err != nil {
		t.Fatal(err)
	}
	if got != "A" {
		t.Errorf("lca(A) = %q, want A", got)
	}

	got, err = tr.LCA("R", "A")
	if err != nil {
		t.Fatal(err)
	}
	if got != "X" {
		t.Errorf("lca(R,A) = %q, want X (root's single child)", got)
	}
}

func TestAncestors(t *testing.T) {
	tr := mustLoad(t, "((A,B)X,C)R;")
	tr.Index()

	anc, err := tr.Ancestors("A")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := anc["X"]; !ok {
		t.Error("X should be an ancestor of A")
	}
	if _, ok := anc["R"]; !ok {
		t.Error("R should be an ancestor of A")
	}
	if _, ok := anc["A"]; ok {
		t.Error("A should not be its own ancestor")
	}
	if _, ok := anc["C"]; ok {
		t.Error("C should not be an ancestor of A")
	}
}

func TestIsAncestor(t *testing.T) {
	tr := mustLoad(t, "((A,B)X,C)R;")
	tr.Index()

	a, _ := tr.NameLookup("A")
	x, _ := tr.NameLookup("X")
	r, _ := tr.NameLookup("R")
	c, _ := tr.NameLookup("C")

	if !tr.IsAncestor(x, a) {
		t.Error("X should be an ancestor of A")
	}
	if !tr.IsAncestor(r, a) {
		t.Error("R should be an ancestor of A")
	}
	if tr.IsAncestor(c, a) {
		t.Error("C should not be an ancestor of A")
	}
	if tr.IsAncestor(a, a) {
		t.Error("A should not be a strict ancestor of itself")
	}
}

func TestLCANotIndexed(t *testing.T) {
	tr := mustLoad(t, "(A,B)R;")
	if _, err := tr.LCA("A", "B"); err != ErrNotIndexed {
		t.Errorf("expected ErrNotIndexed, got %v", err)
	}
}

func TestParseNewickRejectsMissingSemicolon(t *testing.T) {
	if _, err := ParseNewick("(A,B)R"); err == nil {
		t.Fatal("expected error for missing trailing ';'")
	}
}

func TestParseNewickNHXAnnotations(t *testing.T) {
	tr := mustLoad(t, "(A[&&NHX:fastapath=a.fa:taxid=9606:kmers_full=17])R;")
	a, err := tr.NameLookup("A")
	if err != nil {
		t.Fatal(err)
	}
	n := tr.Nodes[a]
	if n.FastaPath != "a.fa" || n.Taxid != "9606" || n.KmersFull != 17 {
		t.Errorf("NHX annotations not applied: %+v", n)
	}
}
