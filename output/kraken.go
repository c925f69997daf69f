package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/karel-brinda/prophyle-go/assign"
	"github.com/karel-brinda/prophyle-go/block"
	"github.com/karel-brinda/prophyle-go/tree"
)

// KrakenWriter emits spec §4.7's Kraken-like form:
// "C|U \t qname \t rname_or_0 \t qlen \t blocks".
type KrakenWriter struct {
	W           io.Writer
	Tree        *tree.Tree
	SimulateLCA bool // -X: render each block as its candidates' LCA
}

// WriteAssignment emits one Kraken-style line for rec/asg. When
// SimulateLCA is set, the block stream is rendered as run-length-encoded
// per-position taxids (or node names, absent a taxid) derived from each
// block's single LCA candidate, per spec §4.7; otherwise the original
// block tokens are echoed as-is.
func (k *KrakenWriter) WriteAssignment(rec *block.Record, asg *assign.Assignment) error {
	status := "U"
	rname := "0"
	if asg != nil && asg.Result != nil && len(asg.Result.Winners) > 0 {
		status = "C"
		rname = k.taxidOrName(asg.Result.Winners[0].Name)
	}

	blocks, err := k.renderBlocks(rec)
	if err != nil {
		return err
	}
	fields := []string{status, rec.QName, rname, fmt.Sprintf("%d", rec.QLen), blocks}
	_, err = fmt.Fprintln(k.W, strings.Join(fields, "\t"))
	return err
}

func (k *KrakenWriter) taxidOrName(name string) string {
	idx, err := k.Tree.NameLookup(name)
	if err != nil {
		return name
	}
	if t := k.Tree.Nodes[idx].Taxid; t != "" {
		return t
	}
	return name
}

// renderBlocks renders rec's block stream as space-separated
// "token:count" tokens. In SimulateLCA mode a multi-name block is replaced
// by the LCA of its names, and node names are replaced by taxids, per §4.7.
func (k *KrakenWriter) renderBlocks(rec *block.Record) (string, error) {
	toks := make([]string, 0, len(rec.Blocks))
	for _, b := range rec.Blocks {
		var name string
		switch b.Candidates.Kind {
		case block.KindNoHit:
			name = "0"
		case block.KindAmbiguous:
			name = "A"
		default:
			names := b.Candidates.Names
			if k.SimulateLCA && len(names) > 0 {
				lca := names[0]
				if len(names) > 1 {
					l, err := k.Tree.LCA(names...)
					if err != nil {
						return "", err
					}
					lca = l
				}
				names = []string{k.taxidOrName(lca)}
			}
			name = strings.Join(names, ",")
		}
		toks = append(toks, fmt.Sprintf("%s:%d", name, b.Count))
	}
	return strings.Join(toks, " "), nil
}
