// Package ctrie implements the compacted trie with micro-tries (CTrie++):
// an ordered map from variable-length byte strings to integer values,
// keyed on reversed substrings of T selected by the suffixient-set
// builder. It supports insert, exact/prefix lookup, and longest-prefix-of-
// key lookup, all grounded on the 8-byte block split of the teacher's
// onpair.Matcher/lpm.LongestPrefixMatcher (match.go, lpm/lpm.go),
// generalized from a flat two-bucket scheme into full branching nodes.
//
// Node storage is a growable slab: every node lives at a stable NodeIndex
// into a single slice, so references are relocatable and serializable (no
// pointer aliasing crosses node boundaries), per spec's shared-resource
// policy.
package ctrie

import "errors"

// NodeIndex addresses a node within a Trie's slab. NoNode is the sentinel
// for "no node".
type NodeIndex int32

// NoNode is the sentinel NodeIndex meaning "absent".
const NoNode NodeIndex = -1

// Empty is the sentinel value meaning "no value stored at this node",
// distinct from any valid caller value by convention (callers store
// non-negative text positions; Empty is negative).
const Empty int64 = -1

// InsertOutcome reports what Insert actually did.
type InsertOutcome int

const (
	// InsertedNew means a brand-new key was added.
	InsertedNew InsertOutcome = iota
	// InsertedValue means an existing internal node (with no prior value)
	// gained a value for an already-present prefix path.
	InsertedValue
	// DuplicateIgnored means the key already had a value; the new value
	// was ignored (spec: "reject duplicates — a warning, not a hard
	// failure").
	DuplicateIgnored
)

// ErrDuplicateKey is returned (non-fatally, as a warning signal) when
// Insert is called on a key that already has a value.
var ErrDuplicateKey = errors.New("ctrie: duplicate key insertion ignored")

type node struct {
	subText  []byte
	value    int64
	children *childMap
	micro    *microTrie
}

// Trie is a compacted trie over byte-string keys mapping to int64 values.
type Trie struct {
	nodes []node
	root  NodeIndex
	count int
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{root: NoNode}
}

// Len returns the number of distinct keys stored.
func (t *Trie) Len() int { return t.count }

func (t *Trie) allocNode(subText []byte, value int64) NodeIndex {
	t.nodes = append(t.nodes, node{subText: append([]byte(nil), subText...), value: value})
	return NodeIndex(len(t.nodes) - 1)
}

func (t *Trie) allocNodeFull(subText []byte, value int64, children *childMap, micro *microTrie) NodeIndex {
	t.nodes = append(t.nodes, node{
		subText:  append([]byte(nil), subText...),
		value:    value,
		children: children,
		micro:    micro,
	})
	return NodeIndex(len(t.nodes) - 1)
}

func commonPrefixLen(a, b []byte) int {
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

func blockOf(remaining []byte) []byte {
	n := len(remaining)
	if n > 8 {
		n = 8
	}
	return remaining[:n]
}

func blockKey(remaining []byte) uint64 {
	return packBlock(blockOf(remaining))
}

// Insert adds key -> value. If key already has a value, the insertion is
// ignored (the existing value is retained) and (DuplicateIgnored,
// ErrDuplicateKey) is returned as a warning, not a hard failure.
func (t *Trie) Insert(key []byte, value int64) (InsertOutcome, error) {
	if t.root == NoNode {
		t.root = t.allocNode(key, value)
		t.count++
		return InsertedNew, nil
	}

	cur := t.root
	remaining := key
	for {
		subText := t.nodes[cur].subText
		common := commonPrefixLen(subText, remaining)

		switch {
		case common == len(subText) && common == len(remaining):
			if t.nodes[cur].value != Empty {
				return DuplicateIgnored, ErrDuplicateKey
			}
			t.nodes[cur].value = value
			t.count++
			return InsertedValue, nil

		case common == len(subText):
			remaining = remaining[common:]
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = newChildMap()
				t.nodes[cur].micro = newMicroTrie()
			}
			key8 := blockKey(remaining)
			if childIdx, ok := t.nodes[cur].children.get(key8); ok {
				cur = childIdx
				continue
			}
			leaf := t.allocNode(remaining, value)
			t.nodes[cur].children.put(key8, leaf)
			t.count++
			t.rebuildMicroFor(cur)
			return InsertedNew, nil

		case common == len(remaining):
			// remaining is a proper prefix of subText: split so the new
			// internal node holds `remaining` as its subText and value,
			// the old node's tail becomes its sole child.
			oldValue := t.nodes[cur].value
			oldChildren := t.nodes[cur].children
			oldMicro := t.nodes[cur].micro
			suffix := append([]byte(nil), subText[common:]...)
			childIdx := t.allocNodeFull(suffix, oldValue, oldChildren, oldMicro)

			newChildren := newChildMap()
			newChildren.put(blockKey(suffix), childIdx)
			t.nodes[cur] = node{
				subText:  append([]byte(nil), subText[:common]...),
				value:    value,
				children: newChildren,
				micro:    newMicroTrie(),
			}
			t.count++
			t.rebuildMicroFor(cur)
			return InsertedNew, nil

		default:
			// genuine split: common < len(subText) and common < len(remaining)
			oldValue := t.nodes[cur].value
			oldChildren := t.nodes[cur].children
			oldMicro := t.nodes[cur].micro
			suffixOld := append([]byte(nil), subText[common:]...)
			suffixNew := append([]byte(nil), remaining[common:]...)

			oldChildIdx := t.allocNodeFull(suffixOld, oldValue, oldChildren, oldMicro)
			newLeafIdx := t.allocNode(suffixNew, value)

			newChildren := newChildMap()
			newChildren.put(blockKey(suffixOld), oldChildIdx)
			newChildren.put(blockKey(suffixNew), newLeafIdx)
			t.nodes[cur] = node{
				subText:  append([]byte(nil), subText[:common]...),
				value:    Empty,
				children: newChildren,
				micro:    newMicroTrie(),
			}
			t.count++
			t.rebuildMicroFor(cur)
			return InsertedNew, nil
		}
	}
}

func (t *Trie) rebuildMicroFor(idx NodeIndex) {
	n := &t.nodes[idx]
	if n.children == nil {
		return
	}
	entries := make([]microEntry, 0, n.children.len())
	n.children.each(func(key8 uint64, child NodeIndex) {
		childSub := t.nodes[child].subText
		b := blockOf(childSub)
		entries = append(entries, microEntry{block: packBlock(b), bits: len(b) * 8, value: int32(child)})
	})
	n.micro.rebuild(entries)
}

// ContainsPrefix reports whether some stored key is a prefix of p, or p is
// a prefix of some stored key.
func (t *Trie) ContainsPrefix(p []byte) bool {
	if t.root == NoNode {
		return false
	}
	cur := t.root
	remaining := p
	for {
		n := &t.nodes[cur]
		common := commonPrefixLen(n.subText, remaining)
		if common == len(remaining) {
			return true
		}
		if common < len(n.subText) {
			return false
		}
		if n.value != Empty {
			return true
		}
		remaining = remaining[common:]
		if n.children == nil {
			return false
		}
		key8 := blockKey(remaining)
		if childIdx, ok := n.children.get(key8); ok {
			cur = childIdx
			continue
		}
		window := blockOf(remaining)
		if childIdx, matchedBits, ok := n.micro.GetLongestPrefix(window); ok && matchedBits > 0 {
			cur = NodeIndex(childIdx)
			continue
		}
		return false
	}
}

// LocatePrefix returns the value v associated with the longest stored key
// k such that k is a prefix of p, or (Empty, false) if none exists.
func (t *Trie) LocatePrefix(p []byte) (int64, bool) {
	best, cur, remaining := Empty, t.root, p
	for cur != NoNode && commonPrefixLen(t.nodes[cur].subText, remaining) == len(t.nodes[cur].subText) {
		n := &t.nodes[cur]
		remaining = remaining[len(n.subText):]
		if n.value != Empty {
			best = n.value
		}
		cur = NoNode
		if len(remaining) > 0 && n.children != nil {
			n.children.each(func(_ uint64, c NodeIndex) {
				if sub := t.nodes[c].subText; cur == NoNode && commonPrefixLen(sub, remaining) == len(sub) {
					cur = c
				}
			})
		}
	}
	return best, best != Empty
}

// nearestValue returns idx's own value if set, else the value of a leaf in
// its subtree, reached by repeatedly taking the first child the child map
// yields (hash-table order, not key order). Used by LocateLongestPrefix: once descent
// can make no further progress — whether because p ran out mid-subText or
// because no child/micro-trie entry continues the match — the node
// reached is still the best candidate the trie can offer for this probe,
// exactly as a z-fast trie's exit-node search returns a node to verify
// against rather than failing outright.
func (t *Trie) nearestValue(idx NodeIndex) int64 {
	n := &t.nodes[idx]
	if n.value != Empty {
		return n.value
	}
	if n.children == nil || n.children.len() == 0 {
		return Empty
	}
	var child NodeIndex = NoNode
	n.children.each(func(_ uint64, c NodeIndex) {
		if child == NoNode {
			child = c
		}
	})
	return t.nearestValue(child)
}

// LocateLongestPrefix returns (value, length) for the best matching
// stored key along p's descent path, length measured in bytes of
// matched common prefix. The returned value is a candidate text
// position — not necessarily the value of a key that is itself exactly a
// prefix of p — intended to be refined by an LCP/LCS oracle over the raw
// text, per spec.md §4.6's find_MEMs usage. Returns (Empty, 0, false)
// only when p's very first byte cannot be matched against the trie's
// root (the "character absent from T" edge case of spec.md §4.6).
func (t *Trie) LocateLongestPrefix(p []byte) (int64, int, bool) {
	if t.root == NoNode {
		return Empty, 0, false
	}
	cur := t.root
	remaining := p
	matched := 0

	for first := true; ; first = false {
		n := &t.nodes[cur]
		common := commonPrefixLen(n.subText, remaining)
		if first && len(n.subText) > 0 && len(remaining) > 0 && common == 0 {
			return Empty, 0, false
		}
		matched += common
		remaining = remaining[common:]

		if common < len(n.subText) || len(remaining) == 0 || n.children == nil {
			v := t.nearestValue(cur)
			return v, matched, v != Empty
		}

		key8 := blockKey(remaining)
		if childIdx, ok := n.children.get(key8); ok {
			cur = childIdx
			continue
		}
		window := blockOf(remaining)
		if childIdx, _, ok := n.micro.GetLongestPrefix(window); ok {
			cur = NodeIndex(childIdx)
			continue
		}
		v := t.nearestValue(cur)
		return v, matched, v != Empty
	}
}

// Each visits every stored (key, value) pair via a depth-first walk,
// reconstructing each full key by concatenating subText along the path
// from the root. Used by the index package to serialize/restore a trie
// as a flat key list rather than its derived cuckoo/micro-trie structures
// (see index.Store).
func (t *Trie) Each(fn func(key []byte, value int64)) {
	if t.root == NoNode {
		return
	}
	var walk func(idx NodeIndex, prefix []byte)
	walk = func(idx NodeIndex, prefix []byte) {
		n := &t.nodes[idx]
		full := append(append([]byte(nil), prefix...), n.subText...)
		if n.value != Empty {
			fn(full, n.value)
		}
		if n.children != nil {
			n.children.each(func(_ uint64, child NodeIndex) {
				walk(child, full)
			})
		}
	}
	walk(t.root, nil)
}

// Erase removes key's value, merging unary chains left behind. Erasing a
// key not present is a no-op.
func (t *Trie) Erase(key []byte) {
	if t.root == NoNode {
		return
	}
	type frame struct {
		idx  NodeIndex
		key8 uint64
	}
	var path []frame
	cur := t.root
	remaining := key
	for {
		n := &t.nodes[cur]
		common := commonPrefixLen(n.subText, remaining)
		if common != len(n.subText) {
			return // key not present
		}
		remaining = remaining[common:]
		if len(remaining) == 0 {
			break // found target
		}
		if n.children == nil {
			return
		}
		key8 := blockKey(remaining)
		childIdx, ok := n.children.get(key8)
		if !ok {
			return
		}
		path = append(path, frame{idx: cur, key8: key8})
		cur = childIdx
	}

	if t.nodes[cur].value == Empty {
		return // key not present as a value, only as a path prefix
	}
	t.nodes[cur].value = Empty
	t.count--

	isLeaf := t.nodes[cur].children == nil || t.nodes[cur].children.len() == 0
	if isLeaf && len(path) > 0 {
		parent := path[len(path)-1]
		t.nodes[parent.idx].children.delete(parent.key8)
		t.rebuildMicroFor(parent.idx)
		t.maybeMerge(parent.idx)
		return
	}
	t.maybeMerge(cur)
}

// maybeMerge collapses idx into its single remaining child when idx has no
// value and exactly one child (unary chain), per spec's deletion
// invariant; a node holding a value is never merged.
func (t *Trie) maybeMerge(idx NodeIndex) {
	n := &t.nodes[idx]
	if n.children == nil || n.children.len() != 1 {
		return
	}
	if n.value != Empty {
		// internal node holding a value with one child is not a unary
		// chain violation by itself unless the value is also empty; keep
		// as-is to preserve the stored key.
		return
	}
	var onlyChild NodeIndex
	n.children.each(func(_ uint64, c NodeIndex) { onlyChild = c })
	child := t.nodes[onlyChild]
	merged := append(append([]byte(nil), n.subText...), child.subText...)
	t.nodes[idx] = node{
		subText:  merged,
		value:    child.value,
		children: child.children,
		micro:    child.micro,
	}
}
