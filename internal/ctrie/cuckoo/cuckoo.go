// Package cuckoo implements a small generic cuckoo hash map keyed by a
// 64-bit integer, used both by the compacted trie's child map and by its
// micro-tries' handle maps, and reused by internal/bitvec for its near/far
// hop tables.
//
// Grounded on original_source/include/ctriepp/CuckooHash.hpp: two or three
// independent hash functions, eviction-with-recursion on insert up to a
// bounded number of tries before doubling capacity, and a load factor kept
// in the 0.8-0.9 range.
package cuckoo

import "math/bits"

const (
	// NumHashFunctions is the number of independent hash functions used for
	// candidate slot selection; original_source allows 2 or 3, we use 3 for
	// a lower expected eviction-chain length.
	NumHashFunctions = 3
	maxTries         = 32
	maxLoadFactor    = 0.8
)

type slot[V any] struct {
	key      uint64
	value    V
	occupied bool
}

// Map is an open-addressing cuckoo hash table keyed by uint64, storing an
// arbitrary value type V. The zero Map is not usable; use New.
type Map[V any] struct {
	table   []slot[V]
	seeds   [NumHashFunctions]uint64
	size    int
	rngSeed uint64
}

// New creates an empty cuckoo map with room for at least capacityHint
// entries before the first resize.
func New[V any](capacityHint int) *Map[V] {
	if capacityHint < 8 {
		capacityHint = 8
	}
	tableSize := nextPow2(int(float64(capacityHint) / maxLoadFactor))
	m := &Map[V]{
		table:   make([]slot[V], tableSize),
		rngSeed: 0x9E3779B97F4A7C15,
	}
	for i := range m.seeds {
		m.seeds[i] = splitmix64(&m.rngSeed) | 1
	}
	return m
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// mix applies a per-seed integer hash (HashWM-style multiplicative mix, as
// in original_source/include/SLP/wslp/utils/HashWM.h) and folds the result
// into the table's index space.
func (m *Map[V]) mix(seed, key uint64) int {
	h := (key ^ seed) * 0xD6E8FEB86659FD93
	h ^= h >> 32
	return int(h) & (len(m.table) - 1)
}

func (m *Map[V]) slots(key uint64) [NumHashFunctions]int {
	var idx [NumHashFunctions]int
	for i, seed := range m.seeds {
		idx[i] = m.mix(seed, key)
	}
	return idx
}

// Get returns the value stored for key and true, or the zero value and
// false if key is absent.
func (m *Map[V]) Get(key uint64) (V, bool) {
	for _, i := range m.slots(key) {
		s := &m.table[i]
		if s.occupied && s.key == key {
			return s.value, true
		}
	}
	var zero V
	return zero, false
}

// Contains reports whether key is present.
func (m *Map[V]) Contains(key uint64) bool {
	_, ok := m.Get(key)
	return ok
}

// Put inserts or overwrites the value for key.
func (m *Map[V]) Put(key uint64, value V) {
	for _, i := range m.slots(key) {
		if m.table[i].occupied && m.table[i].key == key {
			m.table[i].value = value
			return
		}
	}
	if float64(m.size+1) > maxLoadFactor*float64(len(m.table)) {
		m.grow()
	}
	m.insert(key, value, 0)
	m.size++
}

func (m *Map[V]) insert(key uint64, value V, tries int) {
	if tries > maxTries {
		m.grow()
		m.insert(key, value, 0)
		return
	}
	idx := m.slots(key)
	for _, i := range idx {
		if !m.table[i].occupied {
			m.table[i] = slot[V]{key: key, value: value, occupied: true}
			return
		}
	}
	// Evict from the first candidate slot and recurse for the evicted entry.
	victim := m.table[idx[0]]
	m.table[idx[0]] = slot[V]{key: key, value: value, occupied: true}
	m.insert(victim.key, victim.value, tries+1)
}

func (m *Map[V]) grow() {
	old := m.table
	m.table = make([]slot[V], len(old)*2)
	for i := range m.seeds {
		m.seeds[i] = splitmix64(&m.rngSeed) | 1
	}
	m.size = 0
	for _, s := range old {
		if s.occupied {
			m.insert(s.key, s.value, 0)
			m.size++
		}
	}
}

// Delete removes key if present.
func (m *Map[V]) Delete(key uint64) {
	for _, i := range m.slots(key) {
		s := &m.table[i]
		if s.occupied && s.key == key {
			*s = slot[V]{}
			m.size--
			return
		}
	}
}

// Len returns the number of entries stored.
func (m *Map[V]) Len() int { return m.size }

// Each calls fn for every stored (key, value) pair in unspecified order.
func (m *Map[V]) Each(fn func(key uint64, value V)) {
	for _, s := range m.table {
		if s.occupied {
			fn(s.key, s.value)
		}
	}
}

// MsbOrZero returns the position of the most significant set bit of x, or
// -1 when x == 0; a small helper shared by the z-fast trie's two-fattest
// number computation.
func MsbOrZero(x uint64) int {
	if x == 0 {
		return -1
	}
	return 63 - bits.LeadingZeros64(x)
}
