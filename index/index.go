// Package index implements C6: the suffixient index. It orchestrates the
// build phases of spec.md §4.6 — feeding reversed selected prefixes of T
// into internal/ctrie, wiring internal/lzindex and internal/oracle on
// top — and answers MEM queries via the find_MEMs state machine, grounded
// directly on original_source/index/suffixient_index.hpp's build/find_MEMs.
package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/regindex/suffixient/builder"
	"github.com/regindex/suffixient/internal/ctrie"
	"github.com/regindex/suffixient/internal/lzindex"
	"github.com/regindex/suffixient/internal/oracle"
)

// ErrPositionOutOfRange is returned when a suffixient-set position does
// not fall within [0, len(text)).
var ErrPositionOutOfRange = errors.New("index: suffixient-set position out of range")

// Config holds the index's tunable parameters.
type Config struct {
	window0 int
}

// Option configures an Index build, following the teacher's functional
// options pattern.
type Option func(*Config)

// WithWindow0 sets the oracle's initial doubling-window size (default 8,
// matching suffixient_index.hpp's G.build(text, 8)).
func WithWindow0(w0 int) Option {
	return func(c *Config) { c.window0 = w0 }
}

func newConfig(opts []Option) Config {
	cfg := Config{window0: 8}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.window0 <= 0 {
		cfg.window0 = 8
	}
	return cfg
}

// Index answers MEM queries against a fixed text T, backed by a
// reverse-prefix trie (C4), an LZ77 self-index (C2), and an LCP/LCS
// oracle (C3).
type Index struct {
	text    []byte
	trie    *ctrie.Trie
	lz      *lzindex.Index
	oracle  *oracle.Oracle
	window0 int
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func sortedUint64(s []uint64) []uint64 {
	out := append([]uint64(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func insertOrIgnoreDuplicate(t *ctrie.Trie, key []byte, value int64) error {
	_, err := t.Insert(key, value)
	if err != nil && !errors.Is(err, ctrie.ErrDuplicateKey) {
		return err
	}
	return nil
}

func finishBuild(text []byte, trie *ctrie.Trie, opts []Option) (*Index, error) {
	cfg := newConfig(opts)
	lz := lzindex.Build(text)
	orc := oracle.New(lz, oracle.WithWindow0(cfg.window0))
	return &Index{text: text, trie: trie, lz: lz, oracle: orc, window0: cfg.window0}, nil
}

// Build constructs a suffixient index in plain mode: for each position p
// in S (processed in ascending order), the full reverse-prefix
// reverse(T[0..p+1]) is inserted mapping to p, per spec.md §4.6 item 2's
// plain-mode description.
func Build(text []byte, S []uint64, opts ...Option) (*Index, error) {
	trie := ctrie.New()
	sorted := sortedUint64(S)
	lastIndex := 0
	var lastPrefix []byte
	for _, p64 := range sorted {
		p := int(p64)
		if p < 0 || p >= len(text) {
			return nil, fmt.Errorf("%w: %d", ErrPositionOutOfRange, p)
		}
		rev := reverseBytes(text[lastIndex : p+1])
		merged := make([]byte, len(rev)+len(lastPrefix))
		copy(merged, rev)
		copy(merged[len(rev):], lastPrefix)
		lastPrefix = merged
		lastIndex = p + 1
		if err := insertOrIgnoreDuplicate(trie, lastPrefix, int64(p)); err != nil {
			return nil, err
		}
	}
	return finishBuild(text, trie, opts)
}

// BuildSupermaximal constructs a suffixient index from the supermaximal
// extension tables (LCS, FIRST) builder.WithSupermaximal optionally
// produces, per spec.md §4.6 item 2's supermaximal-mode description:
// entries with len >= 2 insert their own len-character reverse window;
// entries with len == 1 are deferred and resolved via FIRST[T[p]].
func BuildSupermaximal(text []byte, S []uint64, LCS []int64, FIRST []int64, opts ...Option) (*Index, error) {
	if len(S) != len(LCS) {
		return nil, fmt.Errorf("index: S and LCS length mismatch (%d vs %d)", len(S), len(LCS))
	}

	type entry struct {
		pos    int
		length int64
	}
	entries := make([]entry, len(S))
	for i := range S {
		entries[i] = entry{pos: int(S[i]), length: LCS[i]}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pos != entries[j].pos {
			return entries[i].pos < entries[j].pos
		}
		return entries[i].length < entries[j].length
	})

	trie := ctrie.New()
	var deferred []int
	for _, e := range entries {
		if e.pos < 0 || e.pos >= len(text) {
			return nil, fmt.Errorf("%w: %d", ErrPositionOutOfRange, e.pos)
		}
		if e.length >= 2 {
			start := e.pos - int(e.length) + 1
			if start < 0 {
				start = 0
			}
			key := reverseBytes(text[start : e.pos+1])
			if err := insertOrIgnoreDuplicate(trie, key, int64(e.pos)); err != nil {
				return nil, err
			}
		} else {
			deferred = append(deferred, e.pos)
		}
	}

	for _, p := range deferred {
		c := text[p]
		if int(c) >= len(FIRST) {
			return nil, fmt.Errorf("%w: character %d has no FIRST entry", builder.ErrMissingFirstOccurrence, c)
		}
		flen := FIRST[c]
		if flen <= 0 {
			return nil, builder.ErrMissingFirstOccurrence
		}
		start := p - int(flen) + 1
		if start < 0 {
			start = 0
		}
		key := reverseBytes(text[start : p+1])
		if err := insertOrIgnoreDuplicate(trie, key, int64(p)); err != nil {
			return nil, err
		}
	}

	return finishBuild(text, trie, opts)
}

// MEM reports one maximal exact match: P[Pos:Pos+Len) occurs in T and
// cannot be extended by one character in either direction while
// remaining a substring of T.
type MEM struct {
	Pos int
	Len int
}

// FindMEMs implements the find_MEMs state machine of spec.md §4.6,
// unchanged from original_source/index/suffixient_index.hpp's find_MEMs:
// a single left-to-right scan over P, querying the trie for the longest
// stored reverse-prefix match at each position and extending left/right
// via the oracle's LCS/LCP.
func (idx *Index) FindMEMs(P []byte) []MEM {
	var out []MEM
	i, l, pStart := 0, 0, 0
	m := len(P)
	for i < m {
		key := reverseBytes(P[pStart : i+1])
		v, _, found := idx.trie.LocateLongestPrefix(key)

		var b, f int
		if found {
			b = idx.oracle.LCS(P, i, int(v))
		}
		if b <= l {
			out = append(out, MEM{Pos: i - l, Len: l})
			pStart = i - l + 1
		}
		if found {
			f = idx.oracle.LCP(P, i+1, int(v)+1)
		}
		i = i + f + 1
		l = b + f
	}
	out = append(out, MEM{Pos: i - l, Len: l})
	return out
}
