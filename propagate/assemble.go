package propagate

import "github.com/karel-brinda/prophyle-go/kmer"

// AssembleUnitigs greedily re-assembles a canonical k-mer set into maximal
// contigs, per spec §4.3's "Sequence emission": start at the
// lexicographically smallest remaining canonical k-mer, extend right by the
// unique single-base extension whose resulting k-mer is still in the set,
// stop on ambiguity or exhaustion, then start a new contig from the next
// smallest remaining k-mer. set is consumed (both orientations of every
// k-mer used are removed as they're consumed).
func AssembleUnitigs(set kmer.Set, k int) [][]byte {
	var contigs [][]byte
	for len(set) > 0 {
		start := smallest(set)
		contig := kmer.Decode(start, k)
		consume(set, start, k)

		for {
			next, ok := uniqueExtension(set, contig, k)
			if !ok {
				break
			}
			contig = append(contig, next[len(next)-1])
			code, err := kmer.Encode(next)
			if err != nil {
				break
			}
			consume(set, kmer.Canonical(code, k), k)
		}
		contigs = append(contigs, contig)
	}
	return contigs
}

func smallest(set kmer.Set) uint64 {
	first := true
	var min uint64
	for code := range set {
		if first || code < min {
			min = code
			first = false
		}
	}
	return min
}

func consume(set kmer.Set, canon uint64, k int) {
	set.Delete(canon)
	set.Delete(kmer.RevComp(canon, k))
}

// uniqueExtension looks for the single base b such that the k-mer formed by
// the last k-1 bases of contig plus b is still present in set (in either
// orientation). Returns that k-mer (forward orientation, as it appears in
// contig's reading frame) if exactly one such base exists.
func uniqueExtension(set kmer.Set, contig []byte, k int) ([]byte, bool) {
	if len(contig) < k-1 {
		return nil, false
	}
	suffix := contig[len(contig)-(k-1):]
	var found []byte
	count := 0
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		cand := make([]byte, 0, k)
		cand = append(cand, suffix...)
		cand = append(cand, b)
		code, err := kmer.Encode(cand)
		if err != nil {
			continue
		}
		if set.Has(kmer.Canonical(code, k)) {
			found = cand
			count++
		}
	}
	if count != 1 {
		return nil, false
	}
	return found, true
}
