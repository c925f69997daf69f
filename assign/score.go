package assign

import (
	"github.com/karel-brinda/prophyle-go/internal/bitset"
	"github.com/karel-brinda/prophyle-go/tree"
)

// Measure selects which of a Score's primary values ScoreCandidates/Winners
// maximize over, spec §4.6.
type Measure string

const (
	MeasureH1 Measure = "h1" // raw hit count
	MeasureH2 Measure = "h2" // hit count normalized by the node's full k-mer set size
	MeasureC1 Measure = "c1" // raw covered-base count
	MeasureC2 Measure = "c2" // coverage normalized by the node's full k-mer set size
)

func (m Measure) value(s *Score) float64 {
	switch m {
	case MeasureH2:
		return s.H2
	case MeasureC1:
		return float64(s.C1)
	case MeasureC2:
		return s.C2
	default:
		return float64(s.H1)
	}
}

func (m Measure) isHFamily() bool {
	return m == MeasureH1 || m == MeasureH2
}

// Score holds one candidate node's computed measures for a single read.
type Score struct {
	Name string

	H1 int
	H2 float64
	Hf float64
	C1 int
	C2 float64
	Cf float64
	Ln int

	// Ii/Is are populated by Winners: Ii is this winner's 1-based rank
	// among ties (in first-encounter order), Is the tie-set size.
	Ii int
	Is int

	HitMask bitset.Set
	CovMask bitset.Set
}

// ScoreCandidates computes every candidate's Score from its (inherited)
// masks, per spec §4.6: h1=hit count, hf=h1/(qlen-k+1), h2=h1/kmers_full;
// c1=covered-base count, cf=c1/qlen, c2=c1/kmers_full.
func ScoreCandidates(t *tree.Tree, masks map[string]*CandidateMasks, qlen, k int) (map[string]*Score, error) {
	out := make(map[string]*Score, len(masks))
	for rname, cm := range masks {
		idx, err := t.NameLookup(rname)
		if err != nil {
			return nil, err
		}
		kmersFull := t.Nodes[idx].KmersFull

		h1 := cm.Hit.Count()
		c1 := cm.Cov.Count()
		s := &Score{
			Name:    rname,
			H1:      h1,
			C1:      c1,
			Ln:      qlen,
			HitMask: cm.Hit,
			CovMask: cm.Cov,
		}
		if npos := qlen - k + 1; npos > 0 {
			s.Hf = float64(h1) / float64(npos)
		}
		if qlen > 0 {
			s.Cf = float64(c1) / float64(qlen)
		}
		if kmersFull > 0 {
			s.H2 = float64(h1) / float64(kmersFull)
			s.C2 = float64(c1) / float64(kmersFull)
		}
		out[rname] = s
	}
	return out, nil
}

// Winners picks the maximal-measure candidates from scores, walking order
// (BaseMasks' first-encounter order) and ranking ties by that same order.
//
// This reproduces a literal quirk of the reference's filter_assignments:
// its running maximum starts at 0 and its tie branch ("elif asg[measure]
// == self.max_val") fires even before any candidate has beaten that
// initial 0, so when every candidate's measure is 0, all of them tie as
// winners instead of none. Replicated here rather than special-cased away,
// since it is observable, order-sensitive reference behavior spec §9 asks
// to pin down precisely.
func Winners(scores map[string]*Score, order []string, measure Measure) []*Score {
	maxVal := 0.0
	var winners []*Score
	for _, name := range order {
		s, ok := scores[name]
		if !ok {
			continue
		}
		v := measure.value(s)
		switch {
		case v > maxVal:
			maxVal = v
			winners = []*Score{s}
		case v == maxVal:
			winners = append(winners, s)
		}
	}
	for i, s := range winners {
		s.Ii = i + 1
		s.Is = len(winners)
	}
	return winners
}

// TieResult is the final winner set for a read.
type TieResult struct {
	Winners []*Score

	// HFamilyPresent/CFamilyPresent tell the emitter whether h1/h2/hf
	// (resp. c1/c2/cf) are meaningful for this result's winner(s). Both
	// are true unless ResolveTies collapsed a tie, in which case only the
	// family the tie-breaking measure belongs to survives.
	HFamilyPresent bool
	CFamilyPresent bool
}

// ResolveTies applies spec §4.6's optional tie_lca rule: when more than
// one candidate wins, collapse them into a single synthetic winner at
// their LCA.
//
// The reference carries over only the measure family (h* or c*) that the
// tie-breaking measure belongs to, onto a freshly-built asg dict — the
// other family's fields, and the hit/cov masks themselves, are left
// unset/None, so downstream CIGAR and truthy-gated SAM tag emission for
// those simply don't fire. The reference also never sets ln/ii/is on that
// synthetic dict at all; that reads as an oversight rather than an
// intended part of the contract, since both are trivially well-defined
// for a single collapsed winner, so here they're filled in instead
// (Ln=qlen, Ii=1, Is=1) rather than reproduced as a gap.
func ResolveTies(t *tree.Tree, winners []*Score, measure Measure, qlen int) (*TieResult, error) {
	if len(winners) <= 1 {
		return &TieResult{Winners: winners, HFamilyPresent: true, CFamilyPresent: true}, nil
	}

	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.Name
	}
	lcaName, err := t.LCA(names...)
	if err != nil {
		return nil, err
	}

	first := winners[0]
	synth := &Score{Name: lcaName, Ln: qlen, Ii: 1, Is: 1}

	isH := measure.isHFamily()
	if isH {
		synth.H1, synth.H2, synth.Hf = first.H1, first.H2, first.Hf
	} else {
		synth.C1, synth.C2, synth.Cf = first.C1, first.C2, first.Cf
	}

	return &TieResult{
		Winners:        []*Score{synth},
		HFamilyPresent: isH,
		CFamilyPresent: !isH,
	}, nil
}
