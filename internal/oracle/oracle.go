// Package oracle implements the C3 LCP/LCS service: forward and backward
// longest-common extension between a pattern window and a text position,
// built on top of internal/lzindex's display(a,b) rather than a linear
// scan of T. Grounded on
// original_source/include/LZ/lz77index/LZ77_LCP_LCS_DS.hpp's doubling
// window strategy, reused by suffixient_index.hpp's G.LCP/G.LCS calls.
package oracle

import "github.com/regindex/suffixient/internal/lzindex"

// Config holds the oracle's tunable parameters.
type Config struct {
	w0 int
}

// Option configures an Oracle, following the teacher's functional-options
// pattern (onpair.Option).
type Option func(*Config)

// WithWindow0 sets the initial (and doubling base) window size. Default 8,
// matching suffixient_index.hpp's G.build(text, 8).
func WithWindow0(w0 int) Option {
	return func(c *Config) { c.w0 = w0 }
}

// Oracle answers LCP/LCS queries against a fixed text backed by an
// internal/lzindex.Index, via a geometrically growing display window.
type Oracle struct {
	text *lzindex.Index
	cfg  Config
}

// New builds an Oracle over text.
func New(text *lzindex.Index, opts ...Option) *Oracle {
	cfg := Config{w0: 8}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.w0 <= 0 {
		cfg.w0 = 8
	}
	return &Oracle{text: text, cfg: cfg}
}

// LCP returns the length of the longest prefix of P[p:] equal to T[t:].
// At most O(log(L/w0)) display calls are issued for a match of length L,
// and no text position is displayed more than once: each iteration's
// window starts exactly where the previous one left off.
func (o *Oracle) LCP(P []byte, p, t int) int {
	n := o.text.Len()
	w := o.cfg.w0
	matched := 0
	for {
		remainingP := len(P) - p - matched
		remainingT := n - t - matched
		remaining := remainingP
		if remainingT < remaining {
			remaining = remainingT
		}
		if remaining <= 0 {
			return matched
		}
		win := w
		if win > remaining {
			win = remaining
		}
		chunk := o.text.Display(t+matched, t+matched+win)
		i := 0
		for i < win && P[p+matched+i] == chunk[i] {
			i++
		}
		matched += i
		if i < win {
			return matched
		}
		w *= o.cfg.w0
	}
}

// LCS returns the length of the longest common suffix of P[:p+1] and
// T[:t+1] (i.e. the longest prefix of reverse(P[:p+1]) equal to the
// longest prefix of reverse(T[:t+1])), via the same doubling-window
// strategy as LCP with the comparison direction reversed.
func (o *Oracle) LCS(P []byte, p, t int) int {
	w := o.cfg.w0
	matched := 0
	for {
		remainingP := p + 1 - matched
		remainingT := t + 1 - matched
		remaining := remainingP
		if remainingT < remaining {
			remaining = remainingT
		}
		if remaining <= 0 {
			return matched
		}
		win := w
		if win > remaining {
			win = remaining
		}
		end := t - matched + 1
		start := end - win
		chunk := o.text.Display(start, end)
		i := 0
		for i < win && P[p-matched-i] == chunk[win-1-i] {
			i++
		}
		matched += i
		if i < win {
			return matched
		}
		w *= o.cfg.w0
	}
}
