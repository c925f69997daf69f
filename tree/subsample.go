package tree

import "math/rand"

// Subsample returns a new Tree keeping each leaf independently with
// probability rate (spec §6.4's "-s FLOAT (tree subsampling rate ∈
// [0,1])"), then contracting whatever unary chains that leaves behind.
// Internal nodes are never individually dropped; a subtree disappears only
// when every one of its leaves was dropped. rate=1 returns an equivalent
// tree (after minimalization); rate<=0 is rejected by the caller, not here.
//
// The rng is caller-supplied (rather than a package-global) so a CLI
// subcommand can thread a user-provided --subsample-seed through for
// reproducible subsampling, the way db-index.go's random seed flags do
// for unikmer's own hashed-mode subcommands.
func (t *Tree) Subsample(rate float64, rng *rand.Rand) *Tree {
	if rate >= 1 {
		return t.MinimalSubtree()
	}

	keep := make(map[int32]bool, len(t.Nodes))
	for _, v := range t.PostOrder() {
		if t.Nodes[v].IsLeaf() {
			keep[v] = rng.Float64() < rate
			continue
		}
		for _, c := range t.Nodes[v].Children {
			if keep[c] {
				keep[v] = true
				break
			}
		}
	}

	nt := newTree()
	var build func(orig, parent int32) int32
	build = func(orig, parent int32) int32 {
		idx := nt.newNode(parent)
		src := &t.Nodes[orig]
		dst := &nt.Nodes[idx]
		*dst = Node{Parent: parent}
		dst.Name = src.Name
		dst.FastaPath = src.FastaPath
		dst.Taxid = src.Taxid
		dst.SciName = src.SciName
		dst.Rank = src.Rank
		dst.GI = src.GI
		dst.Lineage = src.Lineage
		dst.NamedLineage = src.NamedLineage
		dst.KmersFull = src.KmersFull

		for _, c := range src.Children {
			if keep[c] {
				build(c, idx)
			}
		}
		return idx
	}

	if len(t.Nodes) == 0 {
		return nt
	}
	nt.Root = build(t.Root, NoNode)
	nt.reindexNames()
	return nt.MinimalSubtree()
}
