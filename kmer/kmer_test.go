package kmer

import (
	"bytes"
	"math/rand"
	"testing"
)

var randomMers [][]byte

func init() {
	randomMers = make([][]byte, 1000)
	for i := range randomMers {
		randomMers[i] = make([]byte, rand.Intn(32)+1)
		for j := range randomMers[i] {
			randomMers[i][j] = bit2base[rand.Intn(4)]
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, mer := range randomMers {
		kcode, err := NewKmerCode(mer)
		if err != nil {
			t.Fatalf("encode error: %s: %v", mer, err)
		}
		if !bytes.Equal(mer, kcode.Bytes()) {
			t.Errorf("decode mismatch: %s != %s", mer, kcode.Bytes())
		}
	}
}

func TestEncodeIllegalBase(t *testing.T) {
	if _, err := Encode([]byte("ACGN")); err != ErrIllegalBase {
		t.Errorf("expected ErrIllegalBase, got %v", err)
	}
}

func TestCanonicalInvolution(t *testing.T) {
	for _, mer := range randomMers {
		kcode, _ := NewKmerCode(mer)
		c1 := kcode.Canonical()
		c2 := c1.Canonical()
		if !c1.Equal(c2) {
			t.Errorf("Canonical() not idempotent for %s", mer)
		}
		rc := KmerCode{RevComp(kcode.Code, kcode.K), kcode.K}
		if !rc.Canonical().Equal(kcode.Canonical()) {
			t.Errorf("canonical(x) != canonical(revcomp(x)) for %s", mer)
		}
	}
}

// TestE1Intersection mirrors spec.md §8 E1: canonical sets for ACGT/ACGA/TTTT
// at k=3.
func TestE1Intersection(t *testing.T) {
	a, err := ExtractCanonicalSet([]byte("ACGT"), 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ExtractCanonicalSet([]byte("ACGA"), 3)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ExtractCanonicalSet([]byte("TTTT"), 3)
	if err != nil {
		t.Fatal(err)
	}

	acg, _ := NewKmerCode([]byte("ACG"))
	cgt, _ := NewKmerCode([]byte("CGT"))
	cga, _ := NewKmerCode([]byte("CGA"))
	ttt, _ := NewKmerCode([]byte("TTT"))

	// ACGT is its own reverse complement, so its 3-mers ACG and CGT share
	// the canonical form ACG.
	if !a.Has(acg.Code) || !a.Has(cgt.Canonical().Code) || a.Len() != 1 {
		t.Errorf("A set wrong: %v", a)
	}
	if !b.Has(acg.Code) || !b.Has(cga.Code) || b.Len() != 2 {
		t.Errorf("B set wrong: %v", b)
	}
	if !c.Has(ttt.Canonical().Code) || c.Len() != 1 {
		t.Errorf("C set wrong: %v", c)
	}

	x := a.Intersect(b)
	if x.Len() != 1 || !x.Has(acg.Code) {
		t.Errorf("expected intersection {ACG}, got %v", x)
	}
}

func TestSetOps(t *testing.T) {
	s1 := NewSet(0)
	s1.Add(1)
	s1.Add(2)
	s2 := NewSet(0)
	s2.Add(2)
	s2.Add(3)

	if u := s1.Union(s2); u.Len() != 3 {
		t.Errorf("union len = %d, want 3", u.Len())
	}
	if i := s1.Intersect(s2); i.Len() != 1 || !i.Has(2) {
		t.Errorf("intersect = %v, want {2}", i)
	}
	if d := s1.Difference(s2); d.Len() != 1 || !d.Has(1) {
		t.Errorf("difference = %v, want {1}", d)
	}

	s1.SubtractInPlace(s2)
	if s1.Len() != 1 || !s1.Has(1) {
		t.Errorf("subtract in place = %v, want {1}", s1)
	}
}

func TestIteratorSkipsIllegalWindows(t *testing.T) {
	it, err := NewIterator([]byte("ACGNTGCA"), 3)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	for {
		_, _, ok := it.Next()
		if !ok {
			break
		}
		n++
	}
	// windows: ACG(ok) CGN(bad) GNT(bad) NTG(bad) TGC(ok) GCA(ok) = 3 valid
	if n != 3 {
		t.Errorf("expected 3 valid windows, got %d", n)
	}
}

func BenchmarkEncode(b *testing.B) {
	mer := []byte("ACTGACTGGTCAGTCAACTGGTCAACTGGTCA")
	for i := 0; i < b.N; i++ {
		Encode(mer)
	}
}
