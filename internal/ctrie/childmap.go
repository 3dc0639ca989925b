package ctrie

import "github.com/regindex/suffixient/internal/ctrie/cuckoo"

// childMap is the cuckoo-hashed set of a branching node's children, keyed
// by the first 8-byte block of the child's sub-text.
type childMap struct {
	m *cuckoo.Map[NodeIndex]
}

func newChildMap() *childMap {
	return &childMap{m: cuckoo.New[NodeIndex](4)}
}

func (c *childMap) get(key8 uint64) (NodeIndex, bool) { return c.m.Get(key8) }
func (c *childMap) put(key8 uint64, idx NodeIndex)    { c.m.Put(key8, idx) }
func (c *childMap) delete(key8 uint64)                { c.m.Delete(key8) }
func (c *childMap) len() int                          { return c.m.Len() }
func (c *childMap) each(fn func(key8 uint64, idx NodeIndex)) {
	c.m.Each(func(key uint64, v NodeIndex) { fn(key, v) })
}
