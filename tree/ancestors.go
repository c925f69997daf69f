package tree

import "fmt"

// Index builds the ancestor/LCA support tables (depth and a binary-lifting
// "2^k-th ancestor" table). It must be called once after MinimalSubtree,
// before Ancestors/LCA/IsAncestor are used.
//
// spec §9 suggests an Euler-tour + RMQ sparse table for LCA; binary lifting
// is used instead (O(log n) per query, O(n log n) to build) since no RMQ or
// Euler-tour library appears anywhere in the corpus and a sparse table adds
// real complexity a read classifier's LCA volume (at most one query per
// read, plus occasional tie-breaks) doesn't need — see DESIGN.md.
func (t *Tree) Index() {
	n := len(t.Nodes)
	logn := 1
	for (1 << logn) < n {
		logn++
	}

	t.depth = make([]int32, n)
	t.up = make([][]int32, logn+1)
	for k := range t.up {
		t.up[k] = make([]int32, n)
		for i := range t.up[k] {
			t.up[k][i] = NoNode
		}
	}

	for _, v := range t.PreOrder() {
		p := t.Nodes[v].Parent
		t.up[0][v] = p
		if p == NoNode {
			t.depth[v] = 0
		} else {
			t.depth[v] = t.depth[p] + 1
		}
	}

	for k := 1; k <= logn; k++ {
		for v := int32(0); v < int32(n); v++ {
			if mid := t.up[k-1][v]; mid != NoNode {
				t.up[k][v] = t.up[k-1][mid]
			}
		}
	}
}

func (t *Tree) indexed() bool {
	return t.up != nil
}

// ancestorAtDepth returns the ancestor of v at the given depth, or NoNode
// if v is shallower than targetDepth.
func (t *Tree) ancestorAtDepth(v int32, targetDepth int32) int32 {
	diff := t.depth[v] - targetDepth
	if diff < 0 {
		return NoNode
	}
	for k := 0; diff > 0; k++ {
		if diff&1 == 1 {
			v = t.up[k][v]
			if v == NoNode {
				return NoNode
			}
		}
		diff >>= 1
	}
	return v
}

func (t *Tree) lca2(a, b int32) int32 {
	if t.depth[a] < t.depth[b] {
		a, b = b, a
	}
	a = t.ancestorAtDepth(a, t.depth[b])
	if a == b {
		return a
	}
	for k := len(t.up) - 1; k >= 0; k-- {
		if t.up[k][a] != t.up[k][b] {
			a = t.up[k][a]
			b = t.up[k][b]
		}
	}
	return t.up[0][a]
}

// LCAIndex returns the arena index of the lowest common ancestor of vs,
// without the root-single-child rewrite (callers that already operate on
// indices apply RootRewrite themselves if needed; LCA does so).
func (t *Tree) LCAIndex(vs ...int32) int32 {
	if len(vs) == 0 {
		return NoNode
	}
	cur := vs[0]
	for _, v := range vs[1:] {
		cur = t.lca2(cur, v)
	}
	return cur
}

// RootRewrite applies spec §4.2's rule: if the LCA is the root and the
// root has exactly one child, return that child instead.
func (t *Tree) RootRewrite(lca int32) int32 {
	if lca == t.Root && len(t.Nodes[t.Root].Children) == 1 {
		return t.Nodes[t.Root].Children[0]
	}
	return lca
}

// LCA returns the name of the lowest common ancestor of the named nodes,
// per spec §4.2's lca(v1,...,vm) operation.
func (t *Tree) LCA(names ...string) (string, error) {
	if !t.indexed() {
		return "", ErrNotIndexed
	}
	if len(names) == 0 {
		return "", fmt.Errorf("tree: LCA requires at least one name")
	}
	if len(names) == 1 {
		idx, err := t.NameLookup(names[0])
		if err != nil {
			return "", err
		}
		return t.Nodes[idx].Name, nil
	}
	idxs := make([]int32, len(names))
	for i, nm := range names {
		idx, err := t.NameLookup(nm)
		if err != nil {
			return "", err
		}
		idxs[i] = idx
	}
	lca := t.RootRewrite(t.LCAIndex(idxs...))
	return t.Nodes[lca].Name, nil
}

// IsAncestor reports whether a is a strict ancestor of v.
func (t *Tree) IsAncestor(a, v int32) bool {
	if t.depth[a] >= t.depth[v] {
		return false
	}
	return t.ancestorAtDepth(v, t.depth[a]) == a
}

// Ancestors returns the set of strict-ancestor names of the named node, per
// spec §4.2's ancestors(v) operation.
func (t *Tree) Ancestors(name string) (map[string]struct{}, error) {
	idx, err := t.NameLookup(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	v := t.Nodes[idx].Parent
	for v != NoNode {
		if t.Nodes[v].Name != "" {
			out[t.Nodes[v].Name] = struct{}{}
		}
		v = t.Nodes[v].Parent
	}
	return out, nil
}

// Depth returns the depth of the named node (root is depth 0).
func (t *Tree) Depth(name string) (int, error) {
	idx, err := t.NameLookup(name)
	if err != nil {
		return 0, err
	}
	return int(t.depth[idx]), nil
}
