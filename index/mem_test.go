package index

import (
	"bytes"
	"reflect"
	"sort"
	"testing"

	"github.com/regindex/suffixient/builder"
)

// naiveSource constructs SA/LCP/BWT of rev(T)$ via brute-force suffix
// sorting, standing in for the external SA/LCP/BWT collaborator for
// these small fixtures.
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
		a, b := full[sa[i-1]:], full[sa[i]:]
		c := 0
		for c < len(a) && c < len(b) && a[c] == b[c] {
			c++
		}
		lcp[i] = int64(c)
	}
	return &naiveSource{sa: sa, lcp: lcp, bwt: bwt}
}

func buildIndexFor(t *testing.T, text string) *Index {
	t.Helper()
	src := buildNaive([]byte(text))
	res, err := builder.Build(src, len(text))
	if err != nil {
		t.Fatalf("builder.Build: %v", err)
	}
	idx, err := Build([]byte(text), res.S)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	return idx
}

func TestFindMEMsConcreteScenarios(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		pattern string
		want    []MEM
	}{
		{"AAAA/AA", "AAAA", "AA", []MEM{{0, 2}}},
		{"ACGT/CGT", "ACGT", "CGT", []MEM{{0, 3}}},
		{"ABRACADABRA/ABRA", "ABRACADABRA", "ABRA", []MEM{{0, 4}}},
		{"AAABAAA/AABAA", "AAABAAA", "AABAA", []MEM{{0, 5}}},
		{"TGATGATAATAAAGA/TGATGATA", "TGATGATAATAAAGA", "TGATGATA", []MEM{{0, 8}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			idx := buildIndexFor(t, c.text)
			got := idx.FindMEMs([]byte(c.pattern))
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("FindMEMs(%q) over %q = %v, want %v", c.pattern, c.text, got, c.want)
			}
		})
	}
}

func TestFindMEMsIdempotent(t *testing.T) {
	idx := buildIndexFor(t, "ABCABCABC")
	p := []byte("BCA")
	first := idx.FindMEMs(p)
	second := idx.FindMEMs(p)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("FindMEMs not idempotent: %v vs %v", first, second)
	}
}

func TestFindMEMsPatternCharAbsentFromText(t *testing.T) {
	idx := buildIndexFor(t, "AAAA")
	got := idx.FindMEMs([]byte("Z"))
	want := []MEM{{0, 0}, {1, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindMEMs with absent char = %v, want %v", got, want)
	}
}

func TestFindMEMsPatternLongerThanText(t *testing.T) {
	idx := buildIndexFor(t, "AB")
	got := idx.FindMEMs([]byte("ABABABAB"))
	if len(got) == 0 {
		t.Fatal("expected at least one MEM")
	}
	for _, mem := range got {
		if mem.Len < 0 || mem.Pos < 0 {
			t.Errorf("invalid MEM: %+v", mem)
		}
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	idx := buildIndexFor(t, "ABRACADABRAABRACADABRA")
	var buf bytes.Buffer
	if _, err := idx.Store(&buf); err != nil {
		t.Fatalf("Store: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	probes := []string{"ABRA", "CAD", "ABRACADABRA", "ZZZ", "A"}
	for _, p := range probes {
		want := idx.FindMEMs([]byte(p))
		got := loaded.FindMEMs([]byte(p))
		if !reflect.DeepEqual(want, got) {
			t.Errorf("round-trip mismatch for pattern %q: %v vs %v", p, got, want)
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("XXXX\x01\x00\x01\x00")))
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}
