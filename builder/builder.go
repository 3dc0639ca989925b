// Package builder implements C5: the one-pass suffixient-set construction
// over a streamed suffix array / LCP array / BWT of rev(T)$, plus a
// linear-time PSV/NSV-based cross-check variant. Grounded on
// original_source/sources/one_pass.cpp (plain mode),
// original_source/sources/one_pass_lcs.cpp (supermaximal/LCS-recording
// mode) and original_source/sources/linear_time.cpp (BuildLinear).
package builder

import (
	"errors"
	"math"
)

// ErrEmptyText is returned when Build is asked to process a zero-length
// text — a fatal input error, per spec.md §4.5's failure semantics.
var ErrEmptyText = errors.New("builder: empty text")

// ErrMissingFirstOccurrence is returned by callers materializing a
// first-occurrence key (index.BuildSupermaximal) when FIRST[c] is
// zero for a character that was actually selected with len == 1 — spec.md
// §9's "should fail loudly" guidance for an unvalidated source assumption.
var ErrMissingFirstOccurrence = errors.New("builder: FIRST[c] missing for a selected len=1 position")

// defaultSigma bounds the per-character candidate table by the full byte
// range; the reference implementation instead hardcodes sigma=128 for
// unremapped ASCII input, but nothing in this package assumes text is
// 7-bit clean, so the wider default is used unless WithAlphabetSize
// overrides it.
const defaultSigma = 256

// SAEntrySource supplies the three streams C5 consumes: the suffix array,
// LCP array, and BWT of rev(T)$, each over N = len(T)+1 entries
// (including the conceptual terminator at rank 0). This is the Go
// interface standing in for the external SA/LCP/BWT construction
// collaborator spec.md §1 excludes from scope — any suffix-array builder
// (e.g. a SA-IS construction) can be wired in by implementing it.
type SAEntrySource interface {
	// N returns the number of entries (len(T) + 1).
	N() int
	// SA returns SA[i].
	SA(i int) uint64
	// LCP returns LCP[i]; LCP[0] is conventionally -1.
	LCP(i int) int64
	// BWT returns BWT[i] = T'[SA[i]-1], with the terminator as 0.
	BWT(i int) byte
}

// candidate is R[c] from spec.md §3/§4.5.
type candidate struct {
	len    int64
	pos    uint64
	lcs    int64
	active bool
}

// Config holds the builder's tunable parameters.
type Config struct {
	sigma        int
	supermaximal bool
}

// Option configures a Build call, following the teacher's functional
// options pattern (onpair.Option).
type Option func(*Config)

// WithAlphabetSize overrides the candidate-table size (default 256).
func WithAlphabetSize(sigma int) Option {
	return func(c *Config) { c.sigma = sigma }
}

// WithSupermaximal enables the LCS-recording variant: per-position LCS
// values are emitted alongside S, and a FIRST[c] table is materialized,
// mirroring one_pass_lcs.cpp rather than one_pass.cpp.
func WithSupermaximal() Option {
	return func(c *Config) { c.supermaximal = true }
}

// Result holds a builder run's output.
type Result struct {
	S     []uint64 // suffixient set, in scan order
	LCS   []int64  // parallel to S; nil unless WithSupermaximal
	FIRST []int64  // length sigma; nil unless WithSupermaximal
	Runs  int      // number of equal-letter BWT(rev(T)) runs
}

// Sorted returns a sorted copy of r.S (spec.md §8 property 3).
func (r *Result) Sorted() []uint64 {
	out := append([]uint64(nil), r.S...)
	sortUint64s(out)
	return out
}

func sortUint64s(s []uint64) {
	// insertion sort is adequate here: S is bounded by the number of
	// BWT runs, which is small relative to n for compressible text, and
	// this keeps the package dependency-free for a tiny utility.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func newConfig(opts []Option) Config {
	cfg := Config{sigma: defaultSigma}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func newCandidateTable(sigma int, lcs int64) []candidate {
	R := make([]candidate, sigma)
	for c := range R {
		R[c] = candidate{len: -1, pos: 0, lcs: lcs, active: false}
	}
	return R
}

// Build runs the canonical one-pass algorithm of spec.md §4.5 over src,
// whose streams describe rev(T)$ for a text of length textLen.
func Build(src SAEntrySource, textLen int, opts ...Option) (*Result, error) {
	if textLen <= 0 {
		return nil, ErrEmptyText
	}
	cfg := newConfig(opts)
	N := src.N()
	R := newCandidateTable(cfg.sigma, -1)

	var S []uint64
	var L []int64
	var F []int64
	if cfg.supermaximal {
		F = make([]int64, cfg.sigma)
	}

	flush := func(limit int64) {
		for c := 1; c < cfg.sigma; c++ {
			if limit < R[c].len {
				if R[c].active {
					S = append(S, R[c].pos)
					if cfg.supermaximal {
						L = append(L, R[c].lcs+1)
						if F[c] == 0 {
							F[c] = R[c].lcs + 1
						}
					}
				}
				R[c] = candidate{len: limit, pos: 0, lcs: limit, active: false}
			}
		}
	}

	m := int64(math.MaxInt64)
	runs := 1
	for i := 1; i < N; i++ {
		lcp := src.LCP(i)
		if lcp < m {
			m = lcp
		}
		if src.BWT(i) != src.BWT(i-1) {
			flush(m)
			for _, ip := range [2]int{i - 1, i} {
				c := int(src.BWT(ip))
				if lcp > R[c].len {
					R[c] = candidate{len: lcp, pos: uint64(textLen) - src.SA(ip), lcs: R[c].lcs, active: true}
				}
			}
			m = math.MaxInt64
			runs++
		}
	}
	flush(-1)

	return &Result{S: S, LCS: L, FIRST: F, Runs: runs}, nil
}

// evalOne applies flush's per-character logic to a single symbol c, used
// by BuildLinear where run-breaks are resolved one character at a time
// via LF-mapping pointers rather than a full sigma-wide sweep.
func evalOne(c int, limit int64, R []candidate, S *[]uint64) {
	if limit < R[c].len {
		if R[c].active {
			*S = append(*S, R[c].pos)
		}
		R[c] = candidate{len: limit, pos: 0, active: false}
	}
}

// BuildLinear computes the same suffixient set as Build via the PSV/NSV
// linear-time strategy of original_source/sources/linear_time.cpp: instead
// of re-scanning every symbol's candidate at each run break, it maintains
// LF-mapping pointers into the (conceptual) sorted column so a
// previously-recorded LCP at a character's last occurrence can be reused
// in O(1). This is an independent construction path used as a
// cross-check against Build in the property tests of spec.md §8, not a
// faster default — both must agree on every input.
//
// Unlike Build, BuildLinear does not support WithSupermaximal: the
// reference linear_time.cpp has no LCS-recording counterpart.
func BuildLinear(src SAEntrySource, textLen int, opts ...Option) (*Result, error) {
	if textLen <= 0 {
		return nil, ErrEmptyText
	}
	cfg := newConfig(opts)
	N := src.N()
	R := newCandidateTable(cfg.sigma, 0)
	var S []uint64

	// pointers[c] starts as C[c], the number of symbols strictly smaller
	// than c across all of T — equivalently, the BWT's rank offset for
	// character c. Since every BWT permutes T, this is just cumulative
	// counts of BWT occurrences, the same boundary linear_time.cpp finds
	// by scanning the (materialized, in the original) sorted F column.
	counts := make([]int64, cfg.sigma)
	for i := 0; i < N; i++ {
		counts[src.BWT(i)]++
	}
	pointers := make([]int64, cfg.sigma)
	var acc int64
	for c := 0; c < cfg.sigma; c++ {
		pointers[c] = acc
		acc += counts[c]
	}

	m := int64(math.MaxInt64)
	runs := 1
	pointers[src.BWT(0)]++
	for i := 1; i < N; i++ {
		c := int(src.BWT(i))
		pointers[c]++
		lcp := src.LCP(i)
		if lcp < m {
			m = lcp
		}
		if src.BWT(i) != src.BWT(i-1) {
			for _, ip := range [2]int{i - 1, i} {
				bip := int(src.BWT(ip))
				if ip == i-1 {
					evalOne(bip, m, R, &S)
				} else if R[bip].len != -1 {
					evalOne(bip, src.LCP(int(pointers[bip])-1)-1, R, &S)
				}
				if lcp > R[bip].len && bip != 0 {
					R[bip] = candidate{len: lcp, pos: uint64(textLen) - src.SA(ip), active: true}
				}
			}
			m = math.MaxInt64
			runs++
		}
	}
	for c := 1; c < cfg.sigma; c++ {
		evalOne(c, -1, R, &S)
	}

	return &Result{S: S, Runs: runs}, nil
}
