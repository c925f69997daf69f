package output

import "github.com/karel-brinda/prophyle-go/tree"

// treeT wraps *tree.Tree with a name->index helper for test assertions.
type treeT struct {
	*tree.Tree
}

func (t treeT) idx(name string) int32 {
	i, err := t.NameLookup(name)
	if err != nil {
		panic(err)
	}
	return i
}

// parseTestTree builds spec §8 scenario E1's tree: "((A,B)X,C)R;".
func parseTestTree() (*treeT, error) {
	tr, err := tree.ParseNewick("((A,B)X,C)R;")
	if err != nil {
		return nil, err
	}
	tr.Index()
	return &treeT{tr}, nil
}
