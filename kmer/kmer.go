// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package kmer encodes fixed-length DNA k-mers (k <= 64) as one or two
// 64-bit words and provides canonicalization and set operations over them.
//
// Unlike unikmer, which accepts IUPAC degenerate bases and folds them to
// their first base, a k-mer window here must be pure ACGT: any other byte
// disqualifies the window (prophyle/spec §3).
package kmer

import "errors"

// ErrIllegalBase means a byte outside {A,C,G,T} (case-insensitive) was
// found in a k-mer window.
var ErrIllegalBase = errors.New("kmer: illegal base")

// ErrKOverflow means k is outside the range the called function supports:
// [1, 32] for the single-word functions, [33, 64] for EncodeBig.
var ErrKOverflow = errors.New("kmer: k (1-64) overflow")

// MaxSmallK is the largest k representable in a single uint64 code.
const MaxSmallK = 32

// MaxK is the largest k supported at all (two uint64 words).
const MaxK = 64

// Code is a 2-bit-packed encoding of a k-mer with k <= 32, stored in the
// low 2k bits of a uint64 (high bit first, as in unikmer).
type Code = uint64

// Encode packs kmer (len(kmer) <= 32, pure ACGT) into a uint64 code.
//
//	A 00
//	C 01
//	G 10
//	T 11
func Encode(kmer []byte) (code uint64, err error) {
	k := len(kmer)
	if k == 0 || k > MaxSmallK {
		return 0, ErrKOverflow
	}
	for i := range kmer {
		code <<= 2
		switch kmer[i] {
		case 'A', 'a':
			code |= 0
		case 'C', 'c':
			code |= 1
		case 'G', 'g':
			code |= 2
		case 'T', 't':
			code |= 3
		default:
			return 0, ErrIllegalBase
		}
	}
	return code, nil
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Decode converts a code of length k back into a byte slice.
func Decode(code uint64, k int) []byte {
	if k <= 0 || k > MaxSmallK {
		panic(ErrKOverflow)
	}
	kmer := make([]byte, k)
	for i := 0; i < k; i++ {
		kmer[k-1-i] = bit2base[code&3]
		code >>= 2
	}
	return kmer
}

// Reverse returns the code of the reversed (not complemented) k-mer.
func Reverse(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code & 3
		code >>= 2
	}
	return
}

// Complement returns the code of the complemented (not reversed) k-mer.
func Complement(code uint64, k int) (c uint64) {
	mask := uint64(1)<<(uint(k)*2) - 1
	return ^code & mask
}

// RevComp returns the code of the reverse complement.
func RevComp(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code&3 ^ 3
		code >>= 2
	}
	return
}

// Canonical returns the lexicographically smaller of code and its reverse
// complement.
func Canonical(code uint64, k int) uint64 {
	rc := RevComp(code, k)
	if rc < code {
		return rc
	}
	return code
}

// KmerCode pairs a packed code with its k, mirroring unikmer's KmerCode.
type KmerCode struct {
	Code uint64
	K    int
}

// NewKmerCode encodes kmer into a KmerCode.
func NewKmerCode(kmer []byte) (KmerCode, error) {
	code, err := Encode(kmer)
	if err != nil {
		return KmerCode{}, err
	}
	return KmerCode{code, len(kmer)}, nil
}

// Canonical returns the canonical form of kcode.
func (kcode KmerCode) Canonical() KmerCode {
	return KmerCode{Canonical(kcode.Code, kcode.K), kcode.K}
}

// Bytes decodes kcode back to a byte slice.
func (kcode KmerCode) Bytes() []byte {
	return Decode(kcode.Code, kcode.K)
}

// String decodes kcode back to a string.
func (kcode KmerCode) String() string {
	return string(Decode(kcode.Code, kcode.K))
}

// Equal reports whether two KmerCodes have the same k and code.
func (kcode KmerCode) Equal(other KmerCode) bool {
	return kcode.K == other.K && kcode.Code == other.Code
}

// BigCode packs a k-mer of 33 <= k <= 64 bases into two uint64 words, hi
// holding the most-significant bases. This extends beyond the k<=31 floor
// that spec.md requires, to cover the same range unikmer's sister tools
// eventually grow into.
type BigCode struct {
	Hi, Lo uint64
	K      int
}

// EncodeBig packs kmer (33 <= len(kmer) <= 64, pure ACGT) into a BigCode.
func EncodeBig(kmer []byte) (BigCode, error) {
	k := len(kmer)
	if k <= MaxSmallK || k > MaxK {
		return BigCode{}, ErrKOverflow
	}
	nHi := k - MaxSmallK
	var hi, lo uint64
	for i := 0; i < nHi; i++ {
		b, err := baseCode(kmer[i])
		if err != nil {
			return BigCode{}, err
		}
		hi = hi<<2 | b
	}
	for i := nHi; i < k; i++ {
		b, err := baseCode(kmer[i])
		if err != nil {
			return BigCode{}, err
		}
		lo = lo<<2 | b
	}
	return BigCode{Hi: hi, Lo: lo, K: k}, nil
}

func baseCode(b byte) (uint64, error) {
	switch b {
	case 'A', 'a':
		return 0, nil
	case 'C', 'c':
		return 1, nil
	case 'G', 'g':
		return 2, nil
	case 'T', 't':
		return 3, nil
	default:
		return 0, ErrIllegalBase
	}
}

// RevComp returns the reverse complement of a BigCode. It walks the decoded
// bases rather than manipulating both words bit-by-bit, since this is only
// called once per emitted big k-mer, not in a hot loop.
func (b BigCode) RevComp() BigCode {
	bases := make([]byte, 0, b.K)
	nHi := b.K - MaxSmallK
	for i := nHi - 1; i >= 0; i-- {
		bases = append(bases, bit2base[(b.Hi>>uint(2*i))&3])
	}
	for i := MaxSmallK - 1; i >= 0; i-- {
		bases = append(bases, bit2base[(b.Lo>>uint(2*i))&3])
	}
	// complement and reverse
	rc := make([]byte, len(bases))
	for i, ch := range bases {
		rc[len(bases)-1-i] = complementBase(ch)
	}
	out, _ := EncodeBig(rc)
	return out
}

func complementBase(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	}
	return b
}

// Canonical returns the lexicographically smaller of b and its reverse
// complement, comparing (Hi, Lo) lexicographically.
func (b BigCode) Canonical() BigCode {
	rc := b.RevComp()
	if rc.Hi < b.Hi || (rc.Hi == b.Hi && rc.Lo < b.Lo) {
		return rc
	}
	return b
}

// Less orders two BigCodes lexicographically by (Hi, Lo).
func (b BigCode) Less(other BigCode) bool {
	if b.Hi != other.Hi {
		return b.Hi < other.Hi
	}
	return b.Lo < other.Lo
}
