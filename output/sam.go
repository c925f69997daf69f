// Package output renders assignment engine results (package assign) as
// per-read records in the two forms spec §4.7 defines: a SAM-like form
// (one header line per tree node, standard SAM columns plus optional
// custom tags) and a Kraken-like form (a compact C/U classification line).
//
// Writers here follow the teacher's own plain-Fprintf-to-an-io.Writer
// convention (propagate/stats.go's WriteCountFile, propagate.go's
// writeFasta) rather than a templating or table library: every record is
// a handful of tab-separated fields, the same shape the teacher always
// reaches for bufio/fmt.Fprintf over.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/karel-brinda/prophyle-go/assign"
	"github.com/karel-brinda/prophyle-go/block"
	"github.com/karel-brinda/prophyle-go/internal/bitset"
	"github.com/karel-brinda/prophyle-go/tree"
)

// HeaderLen is the fixed large @SQ LN: value spec §4.7 calls for ("ln =
// fixed large constant"), since prophyle tree nodes don't have a single
// reference length of their own.
const HeaderLen = 1 << 31 - 1

// SAMWriter emits spec §4.7's SAM-like form.
type SAMWriter struct {
	W        io.Writer
	Tree     *tree.Tree
	K        int
	Annotate bool // -A: append gi/ti/sn/ra tree-annotation tags
}

// WriteHeader emits one @SQ header line per tree node (rname=node.name),
// plus an @HD line, the way a SAM stream's header section is laid out.
// UR/SP/AS tags are included only when the node carries the relevant
// annotation.
func (s *SAMWriter) WriteHeader() error {
	if _, err := fmt.Fprintln(s.W, "@HD\tVN:1.6\tSO:unsorted"); err != nil {
		return err
	}
	for i := range s.Tree.Nodes {
		n := &s.Tree.Nodes[i]
		if n.Name == "" {
			continue
		}
		line := fmt.Sprintf("@SQ\tSN:%s\tLN:%d", n.Name, HeaderLen)
		if n.FastaPath != "" {
			line += "\tUR:" + n.FastaPath
		}
		if n.SciName != "" {
			line += "\tSP:" + n.SciName
		}
		if n.Taxid != "" {
			line += "\tAS:" + n.Taxid
		}
		if _, err := fmt.Fprintln(s.W, line); err != nil {
			return err
		}
	}
	return nil
}

// samFlagUnmapped is SAM FLAG 4 ("segment unmapped"), used for unassigned
// records (spec §4.6 "If W is empty after scoring, emit one unassigned
// record").
const samFlagUnmapped = 4

// WriteAssignment emits one SAM line per winner in asg (or a single
// unassigned line if there are none), per spec §4.6/§4.7.
func (s *SAMWriter) WriteAssignment(rec *block.Record, asg *assign.Assignment) error {
	if asg == nil || asg.Result == nil || len(asg.Result.Winners) == 0 {
		return s.writeUnassigned(rec)
	}
	for _, w := range asg.Result.Winners {
		if err := s.writeWinner(rec, asg.Result, w); err != nil {
			return err
		}
	}
	return nil
}

func (s *SAMWriter) writeUnassigned(rec *block.Record) error {
	fields := []string{
		rec.QName, strconv.Itoa(samFlagUnmapped), "*", "0", "0", "*", "*", "0", "0", "*", "*",
	}
	_, err := fmt.Fprintln(s.W, strings.Join(fields, "\t"))
	return err
}

func (s *SAMWriter) writeWinner(rec *block.Record, tr *assign.TieResult, w *assign.Score) error {
	cigar := "*"
	if tr.CFamilyPresent && w.CovMask != nil {
		cigar = cigarFromMask(w.CovMask, rec.QLen)
	}

	fields := []string{
		rec.QName, "0", w.Name, "1", "255", cigar, "*", "0", "0", "*", "*",
	}

	var tags []string
	if tr.HFamilyPresent {
		tags = append(tags,
			fmt.Sprintf("h1:i:%d", w.H1),
			fmt.Sprintf("h2:f:%.6f", w.H2),
			fmt.Sprintf("hf:f:%.6f", w.Hf),
		)
	}
	if tr.CFamilyPresent {
		tags = append(tags,
			fmt.Sprintf("c1:i:%d", w.C1),
			fmt.Sprintf("c2:f:%.6f", w.C2),
			fmt.Sprintf("cf:f:%.6f", w.Cf),
		)
	}
	tags = append(tags,
		fmt.Sprintf("ln:i:%d", w.Ln),
		fmt.Sprintf("ii:i:%d", w.Ii),
		fmt.Sprintf("is:i:%d", w.Is),
	)
	if tr.HFamilyPresent && w.HitMask != nil {
		tags = append(tags, "hc:Z:"+cigarFromMask(w.HitMask, rec.QLen-s.K+1))
	}
	if s.Annotate {
		tags = append(tags, s.annotationTags(w.Name)...)
	}

	line := strings.Join(fields, "\t")
	if len(tags) > 0 {
		line += "\t" + strings.Join(tags, "\t")
	}
	_, err := fmt.Fprintln(s.W, line)
	return err
}

// annotationTags renders the -A/--annotate tags (gi/ti/sn/ra) from the
// tree's node-level annotations, per spec §4.7.
func (s *SAMWriter) annotationTags(name string) []string {
	idx, err := s.Tree.NameLookup(name)
	if err != nil {
		return nil
	}
	n := &s.Tree.Nodes[idx]
	var tags []string
	add := func(tag, v string) {
		if v != "" {
			tags = append(tags, tag+":Z:"+v)
		}
	}
	add("gi", n.GI)
	add("ti", n.Taxid)
	add("sn", n.SciName)
	add("ra", n.Rank)
	return tags
}

// cigarFromMask renders a run-length-encoded "="/"X" CIGAR string for the
// first n bits of mask (1=match="=", 0=mismatch="X"), streaming directly
// from bitset.Set's word-level Runs per spec §9's "CIGAR emission should
// stream directly from word-level scans".
func cigarFromMask(mask bitset.Set, n int) string {
	if n <= 0 {
		return "*"
	}
	var b strings.Builder
	mask.Runs(n, func(length int, set bool) {
		op := byte('X')
		if set {
			op = '='
		}
		fmt.Fprintf(&b, "%d%c", length, op)
	})
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}
