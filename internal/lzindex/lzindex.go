// Package lzindex is a content-addressed, random-access self-index over a
// text T: an LZ77 parse of T is kept in memory, and display(a, b)
// reconstructs T[a..b) by walking factor back-references.
//
// The parser itself is grounded on the greedy hash-table matcher style of
// github.com/flanglet/kanzi-go/v2/transform/LZCodec.go (rolling hash over
// a minimum match length, chained via a position table) adapted to
// produce a factor list rather than an encoded bitstream, since this
// package's only contract is random-access display, not compression.
//
// Each factor's back-reference chain is additionally recorded in a
// bitvec.BP balanced-parentheses tree (buildChainTree), as spec.md §4.2
// describes: display's recursive walk of factor back-references is guided
// by this tree's per-factor chain depth, which governs which spans are
// worth caching.
package lzindex

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/regindex/suffixient/internal/bitvec"
)

const (
	minMatch     = 8
	hashLog      = 16
	hashMask     = (1 << hashLog) - 1
	hashMultiply = 0x9E3779B1
	cacheSize    = 256
)

// factor is one LZ77 parse unit: either a literal run (copy bytes directly
// from the literal buffer) or a copy from an earlier position in T.
type factor struct {
	length    int32
	srcPos    int32 // valid only when !literal; back-reference position in T
	litOffset int32 // valid only when literal; offset into the shared literal buffer
	literal   bool
}

// Index is a random-access LZ77 self-index over a fixed text T.
type Index struct {
	n        int
	factors  []factor
	starts   *bitvec.BitVector // 1-bit at each factor's starting text position
	literals []byte
	cache    *lru.Cache[spanKey, []byte]
	depth    []int32 // per-factor back-reference chain depth, see buildChainTree
}

type spanKey struct{ a, b int }

// Build parses text into an LZ77 factor list and returns a ready Index.
// text is not retained beyond the parse (the index owns copies of its
// literal bytes and factor metadata).
func Build(text []byte) *Index {
	idx := &Index{n: len(text)}
	idx.parse(text)
	idx.buildChainTree()
	cache, _ := lru.New[spanKey, []byte](cacheSize)
	idx.cache = cache
	return idx
}

// chainDepthCacheThreshold is how deep a factor must sit in its
// back-reference chain before display caches its span unconditionally
// (below minMatch length), since deep-chain spans are the most expensive
// to re-materialize on a repeat query.
const chainDepthCacheThreshold = 2

// buildChainTree derives each factor's back-reference chain depth using a
// balanced-parentheses tree (per spec.md §4.2) over the "primary ancestor"
// relationship: a copy factor's parent is the factor covering the start of
// its source range (literal factors and factors whose source starts before
// any other factor are roots). The tree is built as an Euler tour encoded
// in a bitvec.BP, and every navigation primitive it offers is cross-checked
// against the parent/child structure used to build it — any mismatch means
// the Euler tour itself is corrupt, an unreachable state under correct
// construction.
func (idx *Index) buildChainTree() {
	nf := len(idx.factors)
	if nf == 0 {
		return
	}
	parent := make([]int32, nf)
	children := make([][]int32, nf)
	for fi, f := range idx.factors {
		if f.literal {
			parent[fi] = -1
			continue
		}
		p := int32(idx.factorAt(int(f.srcPos)))
		parent[fi] = p
		children[p] = append(children[p], int32(fi))
	}

	bits := bitvec.New(2 * nf)
	openPos := make([]int32, nf)
	closePos := make([]int32, nf)
	pos := 0
	var visit func(fi int32)
	visit = func(fi int32) {
		openPos[fi] = int32(pos)
		pos++
		for _, c := range children[fi] {
			visit(c)
		}
		bits.Set(pos)
		closePos[fi] = int32(pos)
		pos++
	}
	for fi := int32(0); fi < int32(nf); fi++ {
		if parent[fi] == -1 {
			visit(fi)
		}
	}
	bits.Freeze()

	bp := bitvec.NewBP(bits)
	depth := make([]int32, nf)
	for fi := 0; fi < nf; fi++ {
		if got := bp.Close(int(openPos[fi])); got != int(closePos[fi]) {
			panic(fmt.Sprintf("lzindex: corrupt chain tree: Close(%d) = %d, want %d", openPos[fi], got, closePos[fi]))
		}
		if got := bp.Open(int(closePos[fi])); got != int(openPos[fi]) {
			panic(fmt.Sprintf("lzindex: corrupt chain tree: Open(%d) = %d, want %d", closePos[fi], got, openPos[fi]))
		}
		wantParent := parent[fi]
		gotEnc := bp.Enclose(int(openPos[fi]))
		if wantParent == -1 {
			if gotEnc != bitvec.NoMatch {
				panic(fmt.Sprintf("lzindex: corrupt chain tree: Enclose(%d) = %d, want root", openPos[fi], gotEnc))
			}
		} else if gotEnc != int(openPos[wantParent]) {
			panic(fmt.Sprintf("lzindex: corrupt chain tree: Enclose(%d) = %d, want %d", openPos[fi], gotEnc, openPos[wantParent]))
		}
		depth[fi] = int32(bp.Excess(int(openPos[fi])))
	}
	idx.depth = depth
}

// chainDepth returns the number of back-reference hops between factor fi
// and the literal factor it ultimately bottoms out at.
func (idx *Index) chainDepth(fi int) int {
	if fi < 0 || fi >= len(idx.depth) {
		return 0
	}
	return int(idx.depth[fi])
}

func hash4(b []byte) uint32 {
	var v uint32
	for i := 0; i < 4 && i < len(b); i++ {
		v = v<<8 | uint32(b[i])
	}
	return (v * hashMultiply) >> (32 - hashLog) & hashMask
}

// parse performs a single left-to-right greedy LZ77 parse using a
// position table keyed by a rolling 4-byte hash, in the style of
// LZCodec's hash-chained matcher.
func (idx *Index) parse(text []byte) {
	n := len(text)
	table := make([]int32, 1<<hashLog)
	for i := range table {
		table[i] = -1
	}

	startsBV := bitvec.New(n + 1)
	var factors []factor
	var literals []byte

	i := 0
	litStart := 0
	flushLiteral := func(end int) {
		if end > litStart {
			startsBV.Set(litStart)
			factors = append(factors, factor{
				length:    int32(end - litStart),
				literal:   true,
				litOffset: int32(len(literals)),
			})
			literals = append(literals, text[litStart:end]...)
		}
	}

	for i < n {
		if i+4 > n {
			i++
			continue
		}
		h := hash4(text[i:])
		cand := table[h]
		table[h] = int32(i)

		// Clamp to a non-overlapping back-reference: the source span must
		// lie entirely before i, so display's recursive walk always makes
		// progress toward strictly earlier text positions and terminates.
		maxLen := i - int(cand)
		if cand >= 0 && maxLen >= minMatch {
			length := matchLen(text, int(cand), i)
			if length > maxLen {
				length = maxLen
			}
			if length >= minMatch {
				flushLiteral(i)
				startsBV.Set(i)
				factors = append(factors, factor{length: int32(length), srcPos: cand})
				i += length
				litStart = i
				continue
			}
		}
		i++
	}
	flushLiteral(n)
	startsBV.Freeze()

	idx.factors = factors
	idx.starts = startsBV
	idx.literals = literals
}

// matchLen returns the length of the common run starting at a and b. The
// run may overlap b (a+l crossing b); parse clamps it to b-a, so no stored
// factor's source overlaps the factor itself.
func matchLen(text []byte, a, b int) int {
	n := len(text)
	l := 0
	for b+l < n && text[a+l] == text[b+l] {
		l++
	}
	return l
}

// factorAt returns the index of the factor covering text position p.
func (idx *Index) factorAt(p int) int {
	return idx.starts.Rank1(p+1) - 1
}

func (idx *Index) factorStart(fi int) int {
	return idx.starts.Select1(fi)
}

// Display materializes T[a..b) into a freshly allocated buffer.
func (idx *Index) Display(a, b int) []byte {
	if a < 0 || b > idx.n || a > b {
		panic(fmt.Sprintf("lzindex: invalid range [%d,%d) over text of length %d", a, b, idx.n))
	}
	out := make([]byte, 0, b-a)
	return idx.display(a, b, out)
}

func (idx *Index) display(a, b int, out []byte) []byte {
	if a >= b {
		return out
	}
	if v, ok := idx.cache.Get(spanKey{a, b}); ok {
		return append(out, v...)
	}
	fi := idx.factorAt(a)
	fStart := idx.factorStart(fi)
	f := idx.factors[fi]
	fEnd := fStart + int(f.length)

	spanEnd := b
	if spanEnd > fEnd {
		spanEnd = fEnd
	}

	before := len(out)
	if f.literal {
		lo := int(f.litOffset) + (a - fStart)
		hi := int(f.litOffset) + (spanEnd - fStart)
		out = append(out, idx.literals[lo:hi]...)
	} else {
		srcA := int(f.srcPos) + (a - fStart)
		srcB := int(f.srcPos) + (spanEnd - fStart)
		out = idx.display(srcA, srcB, out)
	}

	if spanEnd-a >= minMatch || idx.chainDepth(fi) >= chainDepthCacheThreshold {
		idx.cache.Add(spanKey{a, spanEnd}, append([]byte(nil), out[before:]...))
	}

	if spanEnd < b {
		out = idx.display(spanEnd, b, out)
	}
	return out
}

// Len returns the length of the indexed text.
func (idx *Index) Len() int { return idx.n }
