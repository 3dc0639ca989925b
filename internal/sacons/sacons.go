// Package sacons provides a self-contained suffix array / LCP array / BWT
// construction, used only by cmd/suffixient to make the CLI runnable end
// to end from raw text on stdin. SA/LCP/BWT construction is explicitly a
// non-goal of the suffixient-set/index design itself (spec.md §1) — the
// normative boundary is builder.SAEntrySource, which any external
// construction (including an O(n) SA-IS build such as
// other_examples/0a1409f1_nkamenev-suffixarr__sais.go.go in the reference
// pack) can satisfy. This package is the simplest correct construction
// that keeps the CLI free of stdlib-only sort.Slice over the full rev(T)$
// string at O(n^2 log n): a standard O(n log^2 n) rank-doubling suffix
// array, with LCP recovered via Kasai's algorithm.
package sacons

import "sort"

// Source implements builder.SAEntrySource over an in-memory rev(T)$
// construction.
type Source struct {
	sa  []int32
	lcp []int64
	bwt []byte
	s   []byte
}

func (s *Source) N() int          { return len(s.sa) }
func (s *Source) SA(i int) uint64 { return uint64(s.sa[i]) }
func (s *Source) LCP(i int) int64 { return s.lcp[i] }
func (s *Source) BWT(i int) byte  { return s.bwt[i] }

// Build constructs a Source over rev(text)$ (terminator byte 0x00), which
// is exactly the string C5 expects to stream SA/LCP/BWT of.
func Build(text []byte) *Source {
	rev := make([]byte, len(text)+1)
	for i, c := range text {
		rev[len(text)-1-i] = c
	}
	rev[len(text)] = 0x00

	sa := suffixArray(rev)
	lcp := kasaiLCP(rev, sa)
	bwt := make([]byte, len(sa))
	for rank, start := range sa {
		if start == 0 {
			bwt[rank] = 0
		} else {
			bwt[rank] = rev[start-1]
		}
	}
	return &Source{sa: sa, lcp: lcp, bwt: bwt, s: rev}
}

// suffixArray builds the suffix array of s via Manber-Myers rank doubling:
// O(n log^2 n) using sort.Slice per round, which is fine for the CLI's
// convenience-construction role (production-grade construction is
// explicitly out of scope, per the package doc comment above).
func suffixArray(s []byte) []int32 {
	n := len(s)
	sa := make([]int32, n)
	rank := make([]int32, n)
	tmp := make([]int32, n)
	for i := 0; i < n; i++ {
		sa[i] = int32(i)
		rank[i] = int32(s[i])
	}

	rankAt := func(i int32) int32 {
		if int(i) >= n {
			return -1
		}
		return rank[i]
	}

	for k := 1; ; k *= 2 {
		less := func(a, b int32) bool {
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return rankAt(a+int32(k)) < rankAt(b+int32(k))
		}
		sort.Slice(sa, func(i, j int) bool { return less(sa[i], sa[j]) })

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if less(sa[i-1], sa[i]) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if int(rank[sa[n-1]]) == n-1 {
			break
		}
		if k > n {
			break
		}
	}
	return sa
}

// kasaiLCP recovers the LCP array from s and its suffix array in O(n),
// following Kasai, Arimura, Arikawa, Lee & Park (2001). lcp[0] is
// conventionally -1, matching builder.SAEntrySource's documented
// convention for the virtual predecessor of the lexicographically first
// suffix.
func kasaiLCP(s []byte, sa []int32) []int64 {
	n := len(s)
	rank := make([]int32, n)
	for i, p := range sa {
		rank[p] = int32(i)
	}
	lcp := make([]int64, n)
	lcp[0] = -1
	h := 0
	for i := 0; i < n; i++ {
		if rank[i] == 0 {
			h = 0
			continue
		}
		j := sa[rank[i]-1]
		for int(i)+h < n && int(j)+h < n && s[int(i)+h] == s[int(j)+h] {
			h++
		}
		lcp[rank[i]] = int64(h)
		if h > 0 {
			h--
		}
	}
	return lcp
}
