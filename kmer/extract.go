package kmer

// Iterator walks the canonical k-mers of a sequence, skipping any window
// that contains a byte outside {A,C,G,T} (case-insensitive) rather than
// folding degenerate IUPAC bases the way unikmer's iterator.go does,
// per spec §3/§4.1 ("non-ACGT letters break k-mers").
type Iterator struct {
	seq []byte
	k   int
	pos int
}

// NewIterator returns an Iterator over seq with k-mer length k.
func NewIterator(seq []byte, k int) (*Iterator, error) {
	if k <= 0 || k > MaxSmallK {
		return nil, ErrKOverflow
	}
	return &Iterator{seq: seq, k: k}, nil
}

// Next returns the canonical code of the next valid k-mer window, advancing
// one base at a time (so overlapping windows sharing an illegal base are
// each individually skipped, rather than jumping past the whole run).
func (it *Iterator) Next() (code uint64, pos int, ok bool) {
	for it.pos+it.k <= len(it.seq) {
		window := it.seq[it.pos : it.pos+it.k]
		c, err := Encode(window)
		p := it.pos
		it.pos++
		if err != nil {
			continue
		}
		return Canonical(c, it.k), p, true
	}
	return 0, 0, false
}

// ExtractCanonicalSet collects every canonical k-mer of seq into a Set.
func ExtractCanonicalSet(seq []byte, k int) (Set, error) {
	it, err := NewIterator(seq, k)
	if err != nil {
		return nil, err
	}
	out := NewSet(len(seq))
	for {
		code, _, ok := it.Next()
		if !ok {
			break
		}
		out.Add(code)
	}
	return out, nil
}

// ExtractCanonical returns every canonical k-mer of seq, in order of
// occurrence (duplicates included), for callers that need positions rather
// than a deduplicated set (e.g. the greedy unitig assembler).
func ExtractCanonical(seq []byte, k int) ([]uint64, error) {
	it, err := NewIterator(seq, k)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, len(seq))
	for {
		code, _, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, code)
	}
	return out, nil
}
