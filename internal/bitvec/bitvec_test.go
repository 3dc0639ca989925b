package bitvec

import "testing"

func TestRank1AndSelect1(t *testing.T) {
	bv := New(16)
	ones := []int{1, 3, 4, 9, 15}
	for _, i := range ones {
		bv.Set(i)
	}
	bv.Freeze()

	if got := bv.Rank1(0); got != 0 {
		t.Errorf("Rank1(0) = %d, want 0", got)
	}
	if got := bv.Rank1(4); got != 2 {
		t.Errorf("Rank1(4) = %d, want 2", got)
	}
	if got := bv.Rank1(16); got != len(ones) {
		t.Errorf("Rank1(16) = %d, want %d", got, len(ones))
	}

	for i, want := range ones {
		if got := bv.Select1(i); got != want {
			t.Errorf("Select1(%d) = %d, want %d", i, got, want)
		}
	}
	if got := bv.Select1(len(ones)); got != -1 {
		t.Errorf("Select1(out of range) = %d, want -1", got)
	}
}

func TestAccessRoundTrip(t *testing.T) {
	bv := New(8)
	bv.Set(0)
	bv.Set(7)
	bv.Freeze()
	want := []int{1, 0, 0, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := bv.Access(i); got != w {
			t.Errorf("Access(%d) = %d, want %d", i, got, w)
		}
	}
}

// TestRank1AcrossWordsAndByteBoundaries exercises inputs wider than a
// single 64-bit word and not a multiple of 8, since Excess/Rank1 both
// special-case trailing partial words/bytes.
func TestRank1AcrossWordsAndByteBoundaries(t *testing.T) {
	n := 130
	bv := New(n)
	for i := 0; i < n; i += 3 {
		bv.Set(i)
	}
	bv.Freeze()
	want := 0
	for i := 0; i < n; i++ {
		if bv.Rank1(i) != want {
			t.Fatalf("Rank1(%d) = %d, want %d", i, bv.Rank1(i), want)
		}
		if i%3 == 0 {
			want++
		}
	}
}

// Note: 0 = open, 1 = close per balanced.go's doc comment, opposite of the
// common 1 = open encoding. Build the bit pattern accordingly: '(' sets a
// 0 bit by leaving it unset, ')' sets a 1 bit.
func bpBits(seq string) *BitVector {
	bv := New(len(seq))
	for i, c := range seq {
		if c == ')' {
			bv.Set(i)
		}
	}
	bv.Freeze()
	return bv
}

func TestBPCloseOpenEnclose(t *testing.T) {
	// "(()(()))" — positions: 0( 1( 2) 3( 4( 5) 6) 7)
	seq := "(()(()))"
	bv := bpBits(seq)
	bp := NewBP(bv)

	cases := []struct {
		open, close int
	}{
		{0, 7},
		{1, 2},
		{3, 6},
		{4, 5},
	}
	for _, c := range cases {
		if got := bp.Close(c.open); got != c.close {
			t.Errorf("Close(%d) = %d, want %d", c.open, got, c.close)
		}
		if got := bp.Open(c.close); got != c.open {
			t.Errorf("Open(%d) = %d, want %d", c.close, got, c.open)
		}
	}

	if got := bp.Enclose(1); got != 0 {
		t.Errorf("Enclose(1) = %d, want 0", got)
	}
	if got := bp.Enclose(3); got != 0 {
		t.Errorf("Enclose(3) = %d, want 0", got)
	}
	if got := bp.Enclose(4); got != 3 {
		t.Errorf("Enclose(4) = %d, want 3", got)
	}
	if got := bp.Enclose(0); got != NoMatch {
		t.Errorf("Enclose(root) = %d, want NoMatch", got)
	}
}

func TestBPExcess(t *testing.T) {
	seq := "(()(()))"
	bv := bpBits(seq)
	bp := NewBP(bv)

	excess := 0
	for i := 0; i <= len(seq); i++ {
		if got := bp.Excess(i); got != excess {
			t.Errorf("Excess(%d) = %d, want %d", i, got, excess)
		}
		if i < len(seq) {
			if seq[i] == '(' {
				excess++
			} else {
				excess--
			}
		}
	}
}

// TestBPLongRangeMatch exercises the far-table memoization path: a single
// deeply nested pair spanning more than nearWindow bits.
func TestBPLongRangeMatch(t *testing.T) {
	depth := nearWindow + 16
	seq := make([]byte, 0, depth*2)
	for i := 0; i < depth; i++ {
		seq = append(seq, '(')
	}
	for i := 0; i < depth; i++ {
		seq = append(seq, ')')
	}
	bv := bpBits(string(seq))
	bp := NewBP(bv)

	if got := bp.Close(0); got != len(seq)-1 {
		t.Errorf("Close(0) = %d, want %d", got, len(seq)-1)
	}
	if got := bp.Open(len(seq) - 1); got != 0 {
		t.Errorf("Open(last) = %d, want 0", got)
	}
}
