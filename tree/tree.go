// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package tree implements prophyle's rooted taxonomic tree (spec §3/§4.2):
// a flat node arena indexed by int32, loaded from Newick/NHX, reducible to
// its minimal subtree, and queryable for ancestors and lowest common
// ancestors.
//
// The arena-of-indices shape follows unikmer's taxonomy.go, whose
// Taxonomy type keeps a flat map[uint32]uint32 parent relation instead of
// a pointer-linked tree; here every node additionally owns children,
// annotations and a name, so the parent map becomes a slice of Node.
package tree

import (
	"errors"
	"fmt"
)

// NoNode is the sentinel "no node" index.
const NoNode int32 = -1

// Node is one arena-allocated tree node.
type Node struct {
	Name     string
	Parent   int32
	Children []int32

	FastaPath string // "@"-separated list of library FASTA files

	Taxid         string
	SciName       string
	Rank          string
	GI            string
	Lineage       string
	NamedLineage  string

	KmersFull uint64 // populated by propagate, consumed by assign
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a rooted tree over an arena of Nodes.
type Tree struct {
	Nodes  []Node
	Root   int32
	byName map[string]int32

	// ancestor/LCA support, built by Index(); nil before then.
	depth []int32
	up    [][]int32 // up[k][v] = 2^k-th ancestor of v, or NoNode
}

var (
	// ErrEmptyTree is returned by Load when the source contains no nodes.
	ErrEmptyTree = errors.New("tree: empty tree")
	// ErrNotIndexed is returned by LCA before Index has run.
	ErrNotIndexed = errors.New("tree: ancestor tables not built, call Index() first")
	// ErrUnknownNode is returned when a name does not resolve to a node.
	ErrUnknownNode = errors.New("tree: unknown node name")
)

func newTree() *Tree {
	return &Tree{byName: make(map[string]int32)}
}

func (t *Tree) newNode(parent int32) int32 {
	idx := int32(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{Parent: parent})
	if parent != NoNode {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	}
	return idx
}

// NameLookup resolves a node name to its arena index.
func (t *Tree) NameLookup(name string) (int32, error) {
	idx, ok := t.byName[name]
	if !ok {
		return NoNode, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	return idx, nil
}

// reindexNames rebuilds byName after structural edits (e.g. minimalization).
func (t *Tree) reindexNames() {
	t.byName = make(map[string]int32, len(t.Nodes))
	for i := range t.Nodes {
		if t.Nodes[i].Name != "" {
			t.byName[t.Nodes[i].Name] = int32(i)
		}
	}
}

// PostOrder returns node indices in post-order (children before parent).
func (t *Tree) PostOrder() []int32 {
	order := make([]int32, 0, len(t.Nodes))
	var walk func(int32)
	walk = func(v int32) {
		for _, c := range t.Nodes[v].Children {
			walk(c)
		}
		order = append(order, v)
	}
	if len(t.Nodes) > 0 {
		walk(t.Root)
	}
	return order
}

// PreOrder returns node indices in pre-order (parent before children).
func (t *Tree) PreOrder() []int32 {
	order := make([]int32, 0, len(t.Nodes))
	var walk func(int32)
	walk = func(v int32) {
		order = append(order, v)
		for _, c := range t.Nodes[v].Children {
			walk(c)
		}
	}
	if len(t.Nodes) > 0 {
		walk(t.Root)
	}
	return order
}
