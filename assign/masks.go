// Package assign implements prophyle's per-read classification (spec
// §4.6/§4.7): scoring each candidate node against a block stream (package
// block) by hit/coverage measures, optionally breaking ties by LCA, and
// producing one winning assignment (or none) per read, in input order.
package assign

import (
	"github.com/karel-brinda/prophyle-go/block"
	"github.com/karel-brinda/prophyle-go/internal/bitset"
	"github.com/karel-brinda/prophyle-go/tree"
)

// CandidateMasks holds one candidate node's hit and coverage bit vectors:
// Hit addresses k-mer start positions (0..qlen-k), Cov addresses read bases
// (0..qlen-1).
type CandidateMasks struct {
	Hit bitset.Set
	Cov bitset.Set
}

// Warnf, if set, is called once per block candidate name that doesn't
// resolve against the tree (e.g. an index built from a different tree).
// Such candidates are skipped rather than treated as a fatal error.
var Warnf func(format string, args ...interface{})

func warn(format string, args ...interface{}) {
	if Warnf != nil {
		Warnf(format, args...)
	}
}

// BaseMasks builds, from rec's blocks, each candidate node's hit/cov bit
// vectors before top-down ancestor inheritance (see Inherit), together with
// the candidate names in first-encounter order.
//
// That order matters: filter_assignments in the reference iterates "for
// rname in self.asgs", and since Python dicts preserve insertion order,
// the winners' ii/is tie-rank numbers are keyed off the order candidates
// were first seen in the block stream, not alphabetical order. order here
// reproduces that.
//
// When simulateLCA is set, every multi-name block is first collapsed to
// its tree LCA (mirroring load_krakline's "replace k-mer matches by their
// LCA" mode); single-name blocks, including the "0"/"A" sentinels, are
// left as is.
func BaseMasks(t *tree.Tree, rec *block.Record, k int, simulateLCA bool) (masks map[string]*CandidateMasks, order []string, err error) {
	masks = make(map[string]*CandidateMasks)

	pos := 0
	for _, blk := range rec.Blocks {
		cs := blk.Candidates
		count := blk.Count

		if simulateLCA && cs.Kind == block.KindNodes && len(cs.Names) > 1 {
			lcaName, lerr := t.LCA(cs.Names...)
			if lerr != nil {
				return nil, nil, lerr
			}
			cs = block.CandidateSet{Kind: block.KindNodes, Names: []string{lcaName}}
		}

		if cs.Kind != block.KindNodes {
			pos += count
			continue
		}

		for _, name := range cs.Names {
			if _, lerr := t.NameLookup(name); lerr != nil {
				warn("assign: block candidate %q not found in tree, skipping", name)
				continue
			}
			cm, ok := masks[name]
			if !ok {
				cm = &CandidateMasks{}
				masks[name] = cm
				order = append(order, name)
			}
			cm.Hit.SetRange(uint(pos), uint(pos+count))
			cm.Cov.SetRange(uint(pos), uint(pos+count+k-1))
		}
		pos += count
	}
	return masks, order, nil
}

// Inherit applies spec §4.2's top-down ancestor-inheritance rule: each
// candidate's mask gains the OR of every strict-ancestor candidate's
// ORIGINAL (pre-inheritance) mask.
//
// The reference computes this by OR-ing each candidate's own hitmask/
// covmask dict entries (upnodes_dict[rname] & rnames) — the un-mutated
// per-candidate dicts built by masks_from_kmer_blocks, never the
// partially-built self.asgs result — so the OR source for every candidate
// is always a pristine base mask. That makes the whole computation order-
// independent; Inherit reproduces it by reading from base throughout and
// writing only to a fresh result map.
func Inherit(t *tree.Tree, base map[string]*CandidateMasks) (map[string]*CandidateMasks, error) {
	out := make(map[string]*CandidateMasks, len(base))
	for rname, cm := range base {
		out[rname] = &CandidateMasks{Hit: cm.Hit.Clone(), Cov: cm.Cov.Clone()}
	}
	for rname := range base {
		ancestors, err := t.Ancestors(rname)
		if err != nil {
			return nil, err
		}
		cur := out[rname]
		for pname := range ancestors {
			if pm, ok := base[pname]; ok {
				cur.Hit.InPlaceUnion(pm.Hit)
				cur.Cov.InPlaceUnion(pm.Cov)
			}
		}
	}
	return out, nil
}
