package ctrie

import "testing"

func entriesFor(keys []string, values []int32) []microEntry {
	out := make([]microEntry, len(keys))
	for i, k := range keys {
		b := []byte(k)
		out[i] = microEntry{block: packBlock(b), bits: len(b) * 8, value: values[i]}
	}
	return out
}

func TestMicroTrieGetLongestPrefixExactKeys(t *testing.T) {
	z := newMicroTrie()
	keys := []string{"AAAAAAAA", "ACGTACGT", "TTTTTTTT"}
	values := []int32{1, 2, 3}
	z.rebuild(entriesFor(keys, values))

	for i, k := range keys {
		v, matched, ok := z.GetLongestPrefix([]byte(k))
		if !ok || v != values[i] || matched != 64 {
			t.Errorf("GetLongestPrefix(%q) = (%d, %d, %v), want (%d, 64, true)", k, v, matched, ok, values[i])
		}
	}
}

func TestMicroTrieGetPrefixRejectsPartialMatch(t *testing.T) {
	z := newMicroTrie()
	z.rebuild(entriesFor([]string{"AAAAAAAA"}, []int32{1}))

	// "AAAABBBB" shares only a 4-byte common prefix with the stored key —
	// not a true byte-prefix relationship, so GetPrefix must reject it.
	if _, ok := z.GetPrefix([]byte("AAAABBBB")); ok {
		t.Error("GetPrefix matched a non-prefix query")
	}
}

func TestMicroTrieContainsPrefix(t *testing.T) {
	z := newMicroTrie()
	z.rebuild(entriesFor([]string{"AAAAAAAA"}, []int32{1}))

	if !z.ContainsPrefix([]byte("AAAAAAAA")) {
		t.Error("ContainsPrefix(exact key) = false, want true")
	}
	if !z.ContainsPrefix([]byte("AAAA")) {
		t.Error("ContainsPrefix(query is a prefix of the stored key) = false, want true")
	}
	if z.ContainsPrefix([]byte("TTTTTTTT")) {
		t.Error("ContainsPrefix(unrelated key) = true, want false")
	}
}

func TestMicroTrieEmpty(t *testing.T) {
	z := newMicroTrie()
	if !z.empty() {
		t.Fatal("new microTrie should be empty")
	}
	if _, _, ok := z.GetLongestPrefix([]byte("AAAAAAAA")); ok {
		t.Error("GetLongestPrefix on an empty microTrie returned ok=true")
	}
	if z.ContainsPrefix([]byte("AAAAAAAA")) {
		t.Error("ContainsPrefix on an empty microTrie returned true")
	}
}

func TestTwoFattest(t *testing.T) {
	if got := twoFattest(0, 0); got != 0 {
		t.Errorf("twoFattest(0,0) = %d, want 0", got)
	}
	// twoFattest(a,b) must lie in (a,b] when a != b.
	cases := [][2]int{{0, 8}, {3, 8}, {5, 64}, {1, 2}}
	for _, c := range cases {
		a, b := c[0], c[1]
		f := twoFattest(a, b)
		if f <= a || f > b {
			t.Errorf("twoFattest(%d,%d) = %d, want in (%d,%d]", a, b, f, a, b)
		}
	}
}
