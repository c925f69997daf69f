// Package block decodes the per-read "block" stream emitted by an index
// query tool (spec §4.5/§6.2): one line per read, each carrying a run-
// length encoded sequence of (candidate node set, position count) pairs.
package block

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind distinguishes a real candidate-node-set block from the two
// sentinel tokens spec §4.5 permits in their place.
type Kind int

const (
	// KindNodes is a real, non-empty set of candidate node names.
	KindNodes Kind = iota
	// KindNoHit is the "0" token: no candidate matched this run.
	KindNoHit
	// KindAmbiguous is the "A" token: the run was masked/ambiguous.
	KindAmbiguous
)

// CandidateSet is one block's (possibly sentinel) candidate node set.
type CandidateSet struct {
	Kind  Kind
	Names []string // populated only when Kind == KindNodes
}

// Block is one (candidate_node_set, multiplicity) pair, spec §3.
type Block struct {
	Candidates CandidateSet
	Count      int
}

// Record is one decoded line of the block stream.
type Record struct {
	Status string // first field, typically a short status code
	QName  string
	Refs   string // "refs_or_dummy" field, opaque to this decoder
	QLen   int
	Blocks []Block
	Seq    string // present only for the 7-field line form
	Qual   string
}

// ErrMalformedLine is returned for a line that doesn't match the §4.5
// column layout.
var ErrMalformedLine = errors.New("block: malformed line")

// ErrCountMismatch is returned when a line's block counts don't sum to
// qlen-k+1 (or 0 when qlen<k), the §4.5 validation invariant.
var ErrCountMismatch = errors.New("block: count mismatch")

// ParseLine decodes one block-stream line against k, validating the
// Σcount = qlen-k+1 invariant (0 when qlen<k).
func ParseLine(line string, k int) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: expected >=5 tab-separated fields, got %d", ErrMalformedLine, len(fields))
	}

	qlen, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: qlen %q: %s", ErrMalformedLine, fields[3], err)
	}

	var blocks []Block
	total := 0
	if s := strings.TrimSpace(fields[4]); s != "" {
		for _, tok := range strings.Fields(s) {
			cs, count, err := parseToken(tok)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, Block{Candidates: cs, Count: count})
			total += count
		}
	}

	want := 0
	if qlen >= k {
		want = qlen - k + 1
	}
	if total != want {
		return nil, fmt.Errorf("%w: qname=%s qlen=%d k=%d sum(count)=%d want=%d",
			ErrCountMismatch, fields[1], qlen, k, total, want)
	}

	rec := &Record{
		Status: fields[0],
		QName:  fields[1],
		Refs:   fields[2],
		QLen:   qlen,
		Blocks: blocks,
	}
	if len(fields) >= 7 {
		rec.Seq = fields[5]
		rec.Qual = fields[6]
	}
	return rec, nil
}

// parseToken decodes one "n1,n2,...:count" (or "0:count"/"A:count") token.
func parseToken(tok string) (CandidateSet, int, error) {
	i := strings.LastIndexByte(tok, ':')
	if i < 0 {
		return CandidateSet{}, 0, fmt.Errorf("%w: block token %q missing ':count'", ErrMalformedLine, tok)
	}
	namesPart, countPart := tok[:i], tok[i+1:]
	count, err := strconv.Atoi(countPart)
	if err != nil {
		return CandidateSet{}, 0, fmt.Errorf("%w: block token %q: %s", ErrMalformedLine, tok, err)
	}

	switch namesPart {
	case "0":
		return CandidateSet{Kind: KindNoHit}, count, nil
	case "A":
		return CandidateSet{Kind: KindAmbiguous}, count, nil
	default:
		return CandidateSet{Kind: KindNodes, Names: strings.Split(namesPart, ",")}, count, nil
	}
}
