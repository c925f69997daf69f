package assign

import (
	"github.com/karel-brinda/prophyle-go/block"
	"github.com/karel-brinda/prophyle-go/tree"
)

// Config holds the per-run parameters of spec §4.6/§6.4's classification
// algorithm.
type Config struct {
	Tree *tree.Tree
	K    int

	Measure     Measure
	SimulateLCA bool // -X: replace k-mer matches by their block LCA
	TieLCA      bool // -L: collapse a tie to its LCA
}

// Assignment is one read's classification result, still tree-shaped (not
// yet rendered to SAM or Kraken text — see package output).
type Assignment struct {
	Record *block.Record
	Result *TieResult
}

// Classify runs spec §4.6's pipeline for a single read: build base masks,
// apply ancestor inheritance, score every candidate, pick the winner(s),
// and optionally collapse a tie to its LCA. A read with no blocks (qlen<k,
// or a block stream line with no candidate hits at all) simply yields zero
// winners.
func Classify(cfg Config, rec *block.Record) (*Assignment, error) {
	base, order, err := BaseMasks(cfg.Tree, rec, cfg.K, cfg.SimulateLCA)
	if err != nil {
		return nil, err
	}
	masks, err := Inherit(cfg.Tree, base)
	if err != nil {
		return nil, err
	}
	scores, err := ScoreCandidates(cfg.Tree, masks, rec.QLen, cfg.K)
	if err != nil {
		return nil, err
	}
	winners := Winners(scores, order, cfg.Measure)

	var result *TieResult
	if cfg.TieLCA {
		result, err = ResolveTies(cfg.Tree, winners, cfg.Measure, rec.QLen)
		if err != nil {
			return nil, err
		}
	} else {
		result = &TieResult{Winners: winners, HFamilyPresent: true, CFamilyPresent: true}
	}

	return &Assignment{Record: rec, Result: result}, nil
}

// Engine drives Classify over a whole block stream, preserving input order
// (block.Decoder already guarantees that) so callers can emit assignments
// as they're produced instead of buffering the whole run.
type Engine struct {
	Cfg Config
}

// Run decodes the block-stream file at path and calls fn once per read, in
// input order. fn's error aborts the run.
func (e *Engine) Run(path string, threads, chunkSize int, fn func(*Assignment) error) error {
	dec, err := block.NewDecoder(path, e.Cfg.K, threads, chunkSize)
	if err != nil {
		return err
	}
	for {
		rec, ok, err := dec.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		asg, err := Classify(e.Cfg, rec)
		if err != nil {
			return err
		}
		if err := fn(asg); err != nil {
			return err
		}
	}
}
