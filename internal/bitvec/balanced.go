package bitvec

import "github.com/regindex/suffixient/internal/ctrie/cuckoo"

// BP is a balanced-parentheses structure over a sequence of matched
// open(0)/close(1) brackets, navigable via close/open/enclose/excess.
//
// Close hops within nearWindow bits are resolved on the fly by replaying
// the precomputed 256-entry byte tables (scanning 8 bits at a time while
// tracking signed excess); only hops spanning a wider distance are
// memoized, into a cuckoo-hashed table keyed by bracket position, so
// repeated long-range navigation doesn't re-scan and short-range queries
// don't pay for a table entry they don't need. Open and Enclose are
// memoized unconditionally at Build time (backward byte-table scanning
// isn't implemented — the bracket sequences this type navigates are built
// once and queried in both directions roughly equally, so exact
// memoization for those two is simpler than a second, reversed byte table
// for a case that's already O(1)).
type BP struct {
	bits  *BitVector
	n     int
	close *cuckoo.Map[int32] // memoized close() results for hops > nearWindow only
	open  *cuckoo.Map[int32] // memoized open() results, all hops
	enc   *cuckoo.Map[int32] // memoized enclose() results, all hops, NoMatch = root

	byteExcess    [256]int8 // net excess contributed by a byte, LSB-first scan
	byteMinExcess [256]int8 // minimum running excess reached strictly inside the byte (relative, starts at 0 before first bit)
}

const nearWindow = 512

// NoMatch is the "none" sentinel returned by Enclose for the root, and by
// Close/Open when the input is malformed (unreachable under correct
// construction).
const NoMatch = -1

// NewBP builds a BP structure over bits, which must already encode a
// well-formed sequence of matched parentheses (0 = open, 1 = close).
func NewBP(bits *BitVector) *BP {
	bp := &BP{
		bits:  bits,
		n:     bits.Len(),
		close: cuckoo.New[int32](bits.Len() / 8),
		open:  cuckoo.New[int32](bits.Len() / 4),
		enc:   cuckoo.New[int32](bits.Len() / 4),
	}
	bp.buildByteTables()
	bp.build()
	return bp
}

func (bp *BP) buildByteTables() {
	for b := 0; b < 256; b++ {
		excess := int8(0)
		minExcess := int8(0)
		cur := int8(0)
		for k := 0; k < 8; k++ {
			bit := (b >> uint(k)) & 1
			if bit == 0 {
				cur++ // open
			} else {
				cur-- // close
			}
			if cur < minExcess {
				minExcess = cur
			}
		}
		excess = cur
		bp.byteExcess[b] = excess
		bp.byteMinExcess[b] = minExcess
	}
}

// build computes exact match/enclose for every bracket via a single
// left-to-right stack pass, populating open/enc unconditionally and close
// only for hops wider than nearWindow (closer ones are resolved by
// scanClose instead, see Close).
func (bp *BP) build() {
	stack := make([]int32, 0, bp.n/2+1)
	// enclose-stack tracks the currently open ancestors so each open
	// bracket's enclosing open can be recorded as it's pushed.
	for i := 0; i < bp.n; i++ {
		if bp.bits.Access(i) == 0 { // open
			if len(stack) > 0 {
				bp.enc.Put(uint64(i), stack[len(stack)-1])
			} else {
				bp.enc.Put(uint64(i), NoMatch)
			}
			stack = append(stack, int32(i))
		} else { // close
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			bp.open.Put(uint64(i), j)
			if i-int(j) > nearWindow {
				// Near hops are resolved by Close's byte-table scan instead;
				// only far ones are worth memoizing.
				bp.close.Put(uint64(j), int32(i))
			}
		}
	}
}

// Close returns the position of the matching close parenthesis for the
// open parenthesis at v.
func (bp *BP) Close(v int) int {
	if m, ok := bp.scanClose(v); ok {
		return m
	}
	if m, ok := bp.close.Get(uint64(v)); ok {
		return int(m)
	}
	return NoMatch
}

// scanClose resolves Close(v) directly when the match lies within
// nearWindow bits, by scanning forward from v+1 a byte at a time and
// tracking signed excess (starting at 1, since v itself is an open
// bracket). byteMinExcess lets whole bytes be skipped without a bit-level
// scan whenever the running excess provably can't reach zero inside them.
func (bp *BP) scanClose(v int) (int, bool) {
	excess := 1
	i := v + 1
	// Covers distances 1..nearWindow inclusive, matching the ">
	// nearWindow" threshold build() uses to decide what's worth memoizing.
	limit := v + nearWindow + 1
	if limit > bp.n {
		limit = bp.n
	}
	for i+8 <= limit {
		b := bp.byteAt(i)
		if excess+int(bp.byteMinExcess[b]) <= 0 {
			return bp.scanCloseBits(i, excess)
		}
		excess += int(bp.byteExcess[b])
		i += 8
	}
	for ; i < limit; i++ {
		if bp.bits.Access(i) == 0 {
			excess++
		} else {
			excess--
			if excess == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// scanCloseBits bit-scans the byte starting at bit position start, given
// the running excess just before it, looking for the bit where excess
// first reaches zero.
func (bp *BP) scanCloseBits(start, excess int) (int, bool) {
	for k := 0; k < 8 && start+k < bp.n; k++ {
		if bp.bits.Access(start+k) == 0 {
			excess++
		} else {
			excess--
			if excess == 0 {
				return start + k, true
			}
		}
	}
	return 0, false
}

// Open returns the position of the matching open parenthesis for the
// close parenthesis at v.
func (bp *BP) Open(v int) int {
	if m, ok := bp.open.Get(uint64(v)); ok {
		return int(m)
	}
	return NoMatch
}

// Enclose returns the nearest strictly-enclosing open parenthesis of v, or
// NoMatch for the root.
func (bp *BP) Enclose(v int) int {
	if m, ok := bp.enc.Get(uint64(v)); ok {
		return int(m)
	}
	return NoMatch
}

// Excess returns the running excess (opens minus closes) over [0, v).
func (bp *BP) Excess(v int) int {
	excess := 0
	i := 0
	for ; i+8 <= v; i += 8 {
		b := bp.byteAt(i)
		excess += int(bp.byteExcess[b])
	}
	for ; i < v; i++ {
		if bp.bits.Access(i) == 0 {
			excess++
		} else {
			excess--
		}
	}
	return excess
}

func (bp *BP) byteAt(bitPos int) byte {
	var b byte
	for k := 0; k < 8 && bitPos+k < bp.n; k++ {
		if bp.bits.Access(bitPos+k) == 1 {
			b |= 1 << uint(k)
		}
	}
	return b
}
