package builder

import (
	"bytes"
	"reflect"
	"sort"
	"testing"
)

// naiveSource constructs SA/LCP/BWT of rev(T)$ via brute-force suffix
// sorting. Only suitable for the small fixtures exercised here — it
// exists purely to stand in for the external SA/LCP/BWT collaborator
// spec.md §1 excludes from scope.
type naiveSource struct {
	sa  []uint64
	lcp []int64
	bwt []byte
}

func (s *naiveSource) N() int          { return len(s.sa) }
func (s *naiveSource) SA(i int) uint64 { return s.sa[i] }
func (s *naiveSource) LCP(i int) int64 { return s.lcp[i] }
func (s *naiveSource) BWT(i int) byte  { return s.bwt[i] }

func buildNaive(t []byte) *naiveSource {
	rev := make([]byte, len(t))
	for i, b := range t {
		rev[len(t)-1-i] = b
	}
	full := append(append([]byte{}, rev...), 0x00)
	n := len(full)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return bytes.Compare(full[idx[a]:], full[idx[b]:]) < 0
	})
	sa := make([]uint64, n)
	bwt := make([]byte, n)
	for rank, start := range idx {
		sa[rank] = uint64(start)
		if start == 0 {
			bwt[rank] = 0
		} else {
			bwt[rank] = full[start-1]
		}
	}
	lcp := make([]int64, n)
	lcp[0] = -1
	for i := 1; i < n; i++ {
		lcp[i] = int64(commonPrefixLenBytes(full[sa[i-1]:], full[sa[i]:]))
	}
	return &naiveSource{sa: sa, lcp: lcp, bwt: bwt}
}

func commonPrefixLenBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func TestBuildConcreteScenarios(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []uint64
	}{
		{"AAAA", "AAAA", []uint64{3}},
		{"ACGT", "ACGT", []uint64{0, 1, 2, 3}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := buildNaive([]byte(c.text))
			res, err := Build(src, len(c.text))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			got := res.Sorted()
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("S = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBuildEmptyText(t *testing.T) {
	src := buildNaive(nil)
	if _, err := Build(src, 0); err != ErrEmptyText {
		t.Errorf("Build(empty) err = %v, want ErrEmptyText", err)
	}
}

func TestBuildLinearAgreesWithBuild(t *testing.T) {
	texts := []string{
		"AAAA",
		"ACGT",
		"ABRACADABRA",
		"ABCABCABC",
		"AAABAAA",
		"TGATGATAATAAAGA",
		"A",
		"ABABABABAB",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			src := buildNaive([]byte(text))
			one, err := Build(src, len(text))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			src2 := buildNaive([]byte(text))
			lin, err := BuildLinear(src2, len(text))
			if err != nil {
				t.Fatalf("BuildLinear: %v", err)
			}
			a, b := one.Sorted(), lin.Sorted()
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Build/BuildLinear disagree for %q: %v vs %v", text, a, b)
			}
			if one.Runs != lin.Runs {
				t.Errorf("run counts disagree for %q: %d vs %d", text, one.Runs, lin.Runs)
			}
		})
	}
}

func TestBuildSupermaximalFirstTable(t *testing.T) {
	text := "ABRACADABRA"
	src := buildNaive([]byte(text))
	res, err := Build(src, len(text), WithSupermaximal())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.LCS) != len(res.S) {
		t.Fatalf("len(LCS) = %d, want %d (parallel to S)", len(res.LCS), len(res.S))
	}
	if len(res.FIRST) != defaultSigma {
		t.Fatalf("len(FIRST) = %d, want %d", len(res.FIRST), defaultSigma)
	}
}

func TestSortedIsStrictlyIncreasing(t *testing.T) {
	text := "TGATGATAATAAAGA"
	src := buildNaive([]byte(text))
	res, err := Build(src, len(text))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := res.Sorted()
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			t.Fatalf("Sorted() not strictly increasing at %d: %v", i, s)
		}
	}
}
