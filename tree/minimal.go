package tree

// MinimalSubtree returns a new Tree with every non-root node that has
// exactly one child contracted away (its single child takes its place;
// the contracted node's name is dropped), per spec §3 "Minimal subtree
// invariant" / §4.2. The root is always kept, even if it has one child.
func (t *Tree) MinimalSubtree() *Tree {
	nt := newTree()

	skipUnary := func(v int32) int32 {
		for len(t.Nodes[v].Children) == 1 {
			v = t.Nodes[v].Children[0]
		}
		return v
	}

	var build func(orig, parent int32) int32
	build = func(orig, parent int32) int32 {
		idx := nt.newNode(parent)
		src := &t.Nodes[orig]
		dst := &nt.Nodes[idx]
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
			build(skipUnary(c), idx)
		}
		return idx
	}

	if len(t.Nodes) == 0 {
		return nt
	}
	nt.Root = build(t.Root, NoNode)
	nt.reindexNames()
	return nt
}
