// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashtable

import (
	"fmt"
	"iter"
	"strings"
)

const (
	defaultChainedCapacity   = 11
	defaultChainedLoadFactor = 0.8
)

// ChainedMap is a map from keys to values that resolves collisions by
// chaining: every index of the table holds a bucket of the entries whose
// keys hash to it.
//
// A ChainedMap is NOT goroutine-safe.
type ChainedMap[K comparable, V comparable] struct {
	config[K, V]
	buckets []bucket[K, V]
	// The number of entries across all buckets.
	count int
	// The number of buckets restored by Clear.
	initialCapacity int
	// gen is advanced on every structural modification and checked by
	// iterators.
	gen uint64
}

// NewChained constructs a new ChainedMap with the specified number of
// buckets. If initialCapacity is <= 0 the map starts with 11 buckets.
func NewChained[K comparable, V comparable](
	initialCapacity int, options ...option[K, V],
) *ChainedMap[K, V] {
	if initialCapacity <= 0 {
		initialCapacity = defaultChainedCapacity
	} else if initialCapacity > maxCapacity {
		initialCapacity = maxCapacity
	}
	m := &ChainedMap[K, V]{
		config:          makeConfig(defaultChainedLoadFactor, options),
		buckets:         make([]bucket[K, V], initialCapacity),
		initialCapacity: initialCapacity,
	}
	m.checkInvariants()
	return m
}

// ChainedFrom constructs a ChainedMap with the default capacity holding
// every entry of src.
func ChainedFrom[K comparable, V comparable](
	src Map[K, V], options ...option[K, V],
) (*ChainedMap[K, V], error) {
	m := NewChained[K, V](0, options...)
	if err := m.PutAll(src); err != nil {
		return nil, err
	}
	return m, nil
}

// Len returns the number of entries in the map.
func (m *ChainedMap[K, V]) Len() int {
	return m.count
}

// IsEmpty reports whether the map has no entries.
func (m *ChainedMap[K, V]) IsEmpty() bool {
	return m.count == 0
}

// Put inserts an entry into the map, overwriting the value of an existing
// entry with the same key.
func (m *ChainedMap[K, V]) Put(key K, value V) (old V, replaced bool, err error) {
	if err := m.checkArgs("put", key, value, true); err != nil {
		return old, false, err
	}

	b := &m.buckets[m.index(key)]
	if i := b.indexOf(key); i >= 0 {
		e := b.get(i)
		if debug {
			fmt.Printf("put(updating): bucket=%d pos=%d key=%v\n", m.index(key), i, key)
		}
		old, e.value = e.value, value
		return old, true, nil
	}

	if m.averageLength() >= m.loadFactor*10 {
		m.rehash()
		b = &m.buckets[m.index(key)]
	}
	b.append(&Entry[K, V]{key: key, value: value})
	m.count++
	m.gen++
	if debug {
		fmt.Printf("put(inserting): bucket=%d len=%d count=%d\n", m.index(key), b.len(), m.count)
	}
	m.checkInvariants()
	return old, false, nil
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present.
func (m *ChainedMap[K, V]) Get(key K) (value V, ok bool, err error) {
	if err := m.checkKey("get", key); err != nil {
		return value, false, err
	}
	b := &m.buckets[m.index(key)]
	if i := b.indexOf(key); i >= 0 {
		return b.get(i).value, true, nil
	}
	return value, false, nil
}

// ContainsKey reports whether key is present in the map.
func (m *ChainedMap[K, V]) ContainsKey(key K) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// ContainsValue reports whether at least one key maps to value.
func (m *ChainedMap[K, V]) ContainsValue(value V) bool {
	for i := range m.buckets {
		for _, e := range m.buckets[i].entries {
			if e.value == value {
				return true
			}
		}
	}
	return false
}

// Contains is equivalent to ContainsValue.
func (m *ChainedMap[K, V]) Contains(value V) bool {
	return m.ContainsValue(value)
}

// Remove deletes the entry for key, returning the value it held. It is a
// noop to remove a non-existent key.
func (m *ChainedMap[K, V]) Remove(key K) (old V, removed bool, err error) {
	if err := m.checkKey("remove", key); err != nil {
		return old, false, err
	}
	bi := m.index(key)
	i := m.buckets[bi].indexOf(key)
	if i < 0 {
		return old, false, nil
	}
	return m.removeAt(bi, i).value, true, nil
}

// removeAt removes the entry at position pos of bucket bi. Every removal,
// including those made by iterators, goes through here.
func (m *ChainedMap[K, V]) removeAt(bi, pos int) *Entry[K, V] {
	e := m.buckets[bi].removeAt(pos)
	m.count--
	m.gen++
	if debug {
		fmt.Printf("remove(%v): bucket=%d pos=%d count=%d\n", e.key, bi, pos, m.count)
	}
	m.checkInvariants()
	return e
}

// PutAll puts every entry of other into the map.
func (m *ChainedMap[K, V]) PutAll(other Map[K, V]) error {
	return putAll[K, V](m, other)
}

// Clear removes every entry and restores the initial number of buckets.
func (m *ChainedMap[K, V]) Clear() {
	m.buckets = make([]bucket[K, V], m.initialCapacity)
	m.count = 0
	m.gen++
	m.checkInvariants()
}

// Keys returns a view of the keys in the map.
func (m *ChainedMap[K, V]) Keys() KeyView[K, V] {
	return KeyView[K, V]{t: m}
}

// Values returns a view of the values in the map.
func (m *ChainedMap[K, V]) Values() ValueView[K, V] {
	return ValueView[K, V]{t: m}
}

// Entries returns a view of the entries in the map.
func (m *ChainedMap[K, V]) Entries() EntryView[K, V] {
	return EntryView[K, V]{t: m}
}

// All returns an iterator over every key and value, bucket by bucket. The
// map can be mutated during iteration, though there is no guarantee that
// the mutations will be visible to the iteration.
func (m *ChainedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		buckets := m.buckets
		for i := range buckets {
			for _, e := range buckets[i].entries {
				// Removals shift and clear the tail of the bucket.
				if e == nil {
					continue
				}
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Equal reports whether other is a Map[K, V] holding the same mappings.
func (m *ChainedMap[K, V]) Equal(other any) bool {
	return mapsEqual[K, V](m, other)
}

// HashCode returns the sum of the hash codes of every entry, or 0 if the
// map is empty. It does not depend on the layout of the table.
func (m *ChainedMap[K, V]) HashCode() uint64 {
	var h uint64
	for i := range m.buckets {
		for _, e := range m.buckets[i].entries {
			h += m.entryHash(e)
		}
	}
	return h
}

// String dumps every bucket of the table, including empty ones.
func (m *ChainedMap[K, V]) String() string {
	var buf strings.Builder
	for i := range m.buckets {
		fmt.Fprintf(&buf, "bucket %d: %s\n", i, m.buckets[i].String())
	}
	return buf.String()
}

// Clone returns a copy of the map with its own buckets and entries. Keys
// and values themselves are copied by assignment.
func (m *ChainedMap[K, V]) Clone() *ChainedMap[K, V] {
	c := &ChainedMap[K, V]{
		config:          m.config,
		buckets:         make([]bucket[K, V], len(m.buckets)),
		count:           m.count,
		initialCapacity: m.initialCapacity,
	}
	for i := range m.buckets {
		src, dst := &m.buckets[i], &c.buckets[i]
		dst.entries = make([]*Entry[K, V], src.len())
		for j := 0; j < src.len(); j++ {
			e := src.get(j)
			dst.set(j, &Entry[K, V]{key: e.key, value: e.value})
		}
	}
	c.checkInvariants()
	return c
}

// capacity returns the number of buckets.
func (m *ChainedMap[K, V]) capacity() int {
	return len(m.buckets)
}

func (m *ChainedMap[K, V]) generation() uint64 {
	return m.gen
}

func (m *ChainedMap[K, V]) index(key K) int {
	return int(m.hash(key) % uint64(len(m.buckets)))
}

func (m *ChainedMap[K, V]) averageLength() float64 {
	return float64(m.count) / float64(len(m.buckets))
}

// rehash grows the table to 2*length+1 buckets and redistributes every
// entry by its new index.
func (m *ChainedMap[K, V]) rehash() {
	oldLength := len(m.buckets)
	newLength := oldLength*2 + 1
	if newLength > maxCapacity {
		newLength = maxCapacity
	}
	if debug {
		fmt.Printf("rehash: length=%d->%d count=%d\n", oldLength, newLength, m.count)
	}

	old := m.buckets
	m.buckets = make([]bucket[K, V], newLength)
	m.gen++
	for i := range old {
		for j := 0; j < old[i].len(); j++ {
			e := old[i].get(j)
			m.buckets[m.index(e.key)].append(e)
		}
		old[i].clear()
	}
}

func (m *ChainedMap[K, V]) newCursor() cursor[K, V] {
	return &chainedCursor[K, V]{m: m, pos: -1}
}

// chainedCursor is positioned at entry pos of bucket bi. A pos of -1 means
// before the first entry of the bucket.
type chainedCursor[K comparable, V comparable] struct {
	m   *ChainedMap[K, V]
	bi  int
	pos int
}

// peek returns the position of the next live entry.
func (c *chainedCursor[K, V]) peek() (bi, pos int, ok bool) {
	buckets := c.m.buckets
	for bi, pos = c.bi, c.pos+1; bi < len(buckets); bi, pos = bi+1, 0 {
		if pos < buckets[bi].len() {
			return bi, pos, true
		}
	}
	return 0, 0, false
}

func (c *chainedCursor[K, V]) hasNext() bool {
	_, _, ok := c.peek()
	return ok
}

func (c *chainedCursor[K, V]) next() *Entry[K, V] {
	bi, pos, ok := c.peek()
	if !ok {
		panic(ErrNoSuchElement)
	}
	c.bi, c.pos = bi, pos
	return c.m.buckets[bi].get(pos)
}

func (c *chainedCursor[K, V]) remove() {
	c.m.removeAt(c.bi, c.pos)
	// The bucket contracted, so the entry that followed now sits at pos.
	c.pos--
}

func (m *ChainedMap[K, V]) checkInvariants() {
	if invariants {
		var count int
		for i := range m.buckets {
			b := &m.buckets[i]
			for j, e := range b.entries {
				if e == nil {
					panic(fmt.Sprintf("invariant failed: bucket %d pos %d: nil entry\n%s", i, j, m.debugString()))
				}
				if h := m.index(e.key); h != i {
					panic(fmt.Sprintf("invariant failed: bucket %d pos %d: key %v belongs in bucket %d\n%s",
						i, j, e.key, h, m.debugString()))
				}
				if k := b.indexOf(e.key); k != j {
					panic(fmt.Sprintf("invariant failed: bucket %d: key %v at %d and %d\n%s",
						i, e.key, k, j, m.debugString()))
				}
				count++
			}
		}
		if count != m.count {
			panic(fmt.Sprintf("invariant failed: found %d entries, but count is %d\n%s",
				count, m.count, m.debugString()))
		}
	}
}

func (m *ChainedMap[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "length=%d  count=%d  load-factor=%.2f  generation=%d\n",
		len(m.buckets), m.count, m.loadFactor, m.gen)
	for i := range m.buckets {
		if m.buckets[i].isEmpty() {
			continue
		}
		fmt.Fprintf(&buf, "  %4d: %s\n", i, m.buckets[i].String())
	}
	return buf.String()
}
