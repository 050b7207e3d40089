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
	defaultProbingCapacity   = 53
	defaultProbingLoadFactor = 0.75
)

// Each slot in a ProbingMap has a state. A slot moves from empty to
// occupied on insertion, from occupied to tombstone on removal, and from
// tombstone back to occupied when an insertion reuses it. It never returns
// to empty except through rehash or Clear, which build fresh arrays.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

func (s slotState) String() string {
	switch s {
	case slotEmpty:
		return "empty"
	case slotOccupied:
		return "occupied"
	case slotTombstone:
		return "tombstone"
	default:
		return fmt.Sprintf("slotState(%d)", uint8(s))
	}
}

// ProbingMap is a map from keys to values that stores entries in a flat
// prime-sized array and resolves collisions with quadratic probing.
//
// A ProbingMap is NOT goroutine-safe.
type ProbingMap[K comparable, V comparable] struct {
	config[K, V]
	// slots[i] is non-nil iff states[i] == slotOccupied.
	slots  []*Entry[K, V]
	states []slotState
	// The number of occupied slots (i.e. the number of entries).
	count int
	// The table length restored by Clear.
	initialCapacity int
	// gen is advanced on every structural modification and checked by
	// iterators.
	gen uint64
}

// NewProbing constructs a new ProbingMap. The table length is the smallest
// prime >= initialCapacity, or 53 if initialCapacity is <= 0.
func NewProbing[K comparable, V comparable](
	initialCapacity int, options ...option[K, V],
) *ProbingMap[K, V] {
	if initialCapacity <= 0 {
		initialCapacity = defaultProbingCapacity
	} else if initialCapacity >= maxCapacity {
		initialCapacity = maxCapacity
	} else {
		initialCapacity = nextPrime(initialCapacity)
	}
	m := &ProbingMap[K, V]{
		config:          makeConfig(defaultProbingLoadFactor, options),
		initialCapacity: initialCapacity,
	}
	m.slots, m.states = m.alloc(initialCapacity)
	m.checkInvariants()
	return m
}

// ProbingFrom constructs a ProbingMap with the default capacity holding
// every entry of src.
func ProbingFrom[K comparable, V comparable](
	src Map[K, V], options ...option[K, V],
) (*ProbingMap[K, V], error) {
	m := NewProbing[K, V](0, options...)
	if err := m.PutAll(src); err != nil {
		return nil, err
	}
	return m, nil
}

// Close closes the map, releasing the slot and state arrays back to its
// configured allocator. It is unnecessary to close a map using the default
// allocator. It is invalid to use a ProbingMap after it has been closed,
// though Close itself is idempotent.
func (m *ProbingMap[K, V]) Close() {
	if m.allocator == nil {
		return
	}
	m.free(m.slots, m.states)
	m.slots, m.states = nil, nil
	m.count = 0
	m.allocator = nil
}

// Len returns the number of entries in the map.
func (m *ProbingMap[K, V]) Len() int {
	return m.count
}

// IsEmpty reports whether the map has no entries.
func (m *ProbingMap[K, V]) IsEmpty() bool {
	return m.count == 0
}

// Put inserts an entry into the map, overwriting the value of an existing
// entry with the same key. It returns ErrProbeExhausted if the key is
// absent and its probe sequence contains neither an empty slot nor a
// tombstone.
func (m *ProbingMap[K, V]) Put(key K, value V) (old V, replaced bool, err error) {
	if err := m.checkArgs("put", key, value, true); err != nil {
		return old, false, err
	}

	// Put walks the probe sequence until it reaches an empty slot. If the
	// key is found on the way its value is overwritten in place. Otherwise
	// the entry goes into the first tombstone seen, or the empty slot that
	// ended the walk if there was none.
	seq := makeProbeSeq(m.hash(key), len(m.slots))
	if debug {
		fmt.Printf("put(%v): %s\n", key, seq)
	}

	tombstone := -1
	for ; !seq.done() && m.states[seq.offset] != slotEmpty; seq = seq.next() {
		i := seq.offset
		if m.states[i] == slotTombstone {
			if debug {
				fmt.Printf("put(tombstone): index=%d first=%t\n", i, tombstone < 0)
			}
			if tombstone < 0 {
				tombstone = i
			}
			continue
		}
		if e := m.slots[i]; e.key == key {
			if debug {
				fmt.Printf("put(updating): index=%d key=%v\n", i, key)
			}
			old, e.value = e.value, value
			return old, true, nil
		}
	}

	i := tombstone
	if i < 0 {
		if seq.done() {
			if debug {
				fmt.Printf("put(exhausted): %s\n%s", seq, m.debugString())
			}
			return old, false, fmt.Errorf("put(%v): length=%d count=%d: %w",
				key, len(m.slots), m.count, ErrProbeExhausted)
		}
		i = seq.offset
	}

	m.slots[i] = &Entry[K, V]{key: key, value: value}
	m.states[i] = slotOccupied
	m.count++
	m.gen++
	if debug {
		fmt.Printf("put(inserting): index=%d count=%d\n", i, m.count)
	}

	if float64(m.count)/float64(len(m.slots)) >= m.loadFactor {
		m.rehash()
	}
	m.checkInvariants()
	return old, false, nil
}

// find returns the slot holding key, or -1. Tombstones never end the walk;
// only an empty slot does.
func (m *ProbingMap[K, V]) find(key K) int {
	seq := makeProbeSeq(m.hash(key), len(m.slots))
	if debug {
		fmt.Printf("find(%v): %s\n", key, seq)
	}

	for ; !seq.done() && m.states[seq.offset] != slotEmpty; seq = seq.next() {
		i := seq.offset
		if m.states[i] == slotOccupied && m.slots[i].key == key {
			return i
		}
		if debug {
			fmt.Printf("find(skipping): index=%d state=%s\n", i, m.states[i])
		}
	}
	return -1
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present.
func (m *ProbingMap[K, V]) Get(key K) (value V, ok bool, err error) {
	if err := m.checkKey("get", key); err != nil {
		return value, false, err
	}
	if i := m.find(key); i >= 0 {
		return m.slots[i].value, true, nil
	}
	return value, false, nil
}

// ContainsKey reports whether key is present in the map.
func (m *ProbingMap[K, V]) ContainsKey(key K) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// ContainsValue reports whether at least one key maps to value.
func (m *ProbingMap[K, V]) ContainsValue(value V) bool {
	for i, s := range m.states {
		if s == slotOccupied && m.slots[i].value == value {
			return true
		}
	}
	return false
}

// Contains is equivalent to ContainsValue.
func (m *ProbingMap[K, V]) Contains(value V) bool {
	return m.ContainsValue(value)
}

// Remove deletes the entry for key, leaving a tombstone in its slot. It is
// a noop to remove a non-existent key.
func (m *ProbingMap[K, V]) Remove(key K) (old V, removed bool, err error) {
	if err := m.checkKey("remove", key); err != nil {
		return old, false, err
	}
	i := m.find(key)
	if i < 0 {
		return old, false, nil
	}
	return m.removeSlot(i).value, true, nil
}

// removeSlot turns slot i into a tombstone. Every removal, including those
// made by iterators, goes through here.
func (m *ProbingMap[K, V]) removeSlot(i int) *Entry[K, V] {
	e := m.slots[i]
	m.slots[i] = nil
	m.states[i] = slotTombstone
	m.count--
	m.gen++
	if debug {
		fmt.Printf("remove(%v): index=%d count=%d\n", e.key, i, m.count)
	}
	m.checkInvariants()
	return e
}

// PutAll puts every entry of other into the map.
func (m *ProbingMap[K, V]) PutAll(other Map[K, V]) error {
	return putAll[K, V](m, other)
}

// Clear removes every entry and restores the initial table length.
func (m *ProbingMap[K, V]) Clear() {
	oldSlots, oldStates := m.slots, m.states
	m.slots, m.states = m.alloc(m.initialCapacity)
	m.free(oldSlots, oldStates)
	m.count = 0
	m.gen++
	m.checkInvariants()
}

// Keys returns a view of the keys in the map.
func (m *ProbingMap[K, V]) Keys() KeyView[K, V] {
	return KeyView[K, V]{t: m}
}

// Values returns a view of the values in the map.
func (m *ProbingMap[K, V]) Values() ValueView[K, V] {
	return ValueView[K, V]{t: m}
}

// Entries returns a view of the entries in the map.
func (m *ProbingMap[K, V]) Entries() EntryView[K, V] {
	return EntryView[K, V]{t: m}
}

// All returns an iterator over every key and value in slot order. The map
// can be mutated during iteration, though there is no guarantee that the
// mutations will be visible to the iteration.
func (m *ProbingMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		// Snapshot the slots and states so that iteration remains valid if
		// the map is rehashed during iteration.
		slots, states := m.slots, m.states
		for i := range states {
			if states[i] != slotOccupied {
				continue
			}
			e := slots[i]
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Equal reports whether other is a Map[K, V] holding the same mappings.
func (m *ProbingMap[K, V]) Equal(other any) bool {
	return mapsEqual[K, V](m, other)
}

// HashCode combines the hash of every slot positionally, with empty slots
// and tombstones contributing 0. It returns 0 if the map is empty. Unlike
// ChainedMap.HashCode the result depends on where entries landed, so maps
// with equal contents but different collision histories can differ.
func (m *ProbingMap[K, V]) HashCode() uint64 {
	if m.count == 0 {
		return 0
	}
	h := uint64(1)
	for i, s := range m.states {
		var eh uint64
		if s == slotOccupied {
			eh = m.entryHash(m.slots[i])
		}
		h = 31*h + eh
	}
	return h
}

// String dumps every slot of the table, with () for slots that hold no
// entry.
func (m *ProbingMap[K, V]) String() string {
	var buf strings.Builder
	buf.WriteString("{\n")
	for i, s := range m.states {
		if s == slotOccupied {
			fmt.Fprintf(&buf, "\t%s\n", m.slots[i])
		} else {
			buf.WriteString("\t()\n")
		}
	}
	buf.WriteString("}")
	return buf.String()
}

// Clone returns a copy of the map with its own slot and state arrays and
// its own entries, laid out exactly like the original.
func (m *ProbingMap[K, V]) Clone() *ProbingMap[K, V] {
	c := &ProbingMap[K, V]{
		config:          m.config,
		count:           m.count,
		initialCapacity: m.initialCapacity,
	}
	c.slots, c.states = c.alloc(len(m.slots))
	copy(c.states, m.states)
	for i, s := range m.states {
		if s == slotOccupied {
			e := m.slots[i]
			c.slots[i] = &Entry[K, V]{key: e.key, value: e.value}
		}
	}
	c.checkInvariants()
	return c
}

// capacity returns the table length.
func (m *ProbingMap[K, V]) capacity() int {
	return len(m.slots)
}

func (m *ProbingMap[K, V]) generation() uint64 {
	return m.gen
}

// rehash grows the table to the smallest prime >= 2*length+1. Only occupied
// slots are carried over; tombstones are dropped.
func (m *ProbingMap[K, V]) rehash() {
	newLength := len(m.slots)*2 + 1
	if newLength >= maxCapacity {
		newLength = maxCapacity
	} else {
		newLength = nextPrime(newLength)
	}
	m.resize(newLength)
}

// resize allocates fresh all-empty arrays of newLength and re-inserts every
// occupied entry by probing from its new home index, then discards the old
// arrays.
func (m *ProbingMap[K, V]) resize(newLength int) {
	oldSlots, oldStates := m.slots, m.states
	if debug {
		fmt.Printf("resize: length=%d->%d count=%d\n", len(oldSlots), newLength, m.count)
	}

	m.slots, m.states = m.alloc(newLength)
	m.gen++
	for i, s := range oldStates {
		if s != slotOccupied {
			continue
		}
		e := oldSlots[i]
		seq := makeProbeSeq(m.hash(e.key), newLength)
		for ; !seq.done() && m.states[seq.offset] != slotEmpty; seq = seq.next() {
		}
		if seq.done() {
			panic(fmt.Sprintf("resize: no empty slot for %v: %s\n%s", e.key, seq, m.debugString()))
		}
		m.slots[seq.offset] = e
		m.states[seq.offset] = slotOccupied
	}
	m.free(oldSlots, oldStates)
}

func (m *ProbingMap[K, V]) alloc(n int) ([]*Entry[K, V], []slotState) {
	slots := m.allocator.AllocSlots(n)
	states := unsafeConvertSlice[slotState](m.allocator.AllocStates(n))
	// The allocator may hand back reused memory.
	clear(slots)
	clear(states)
	return slots, states
}

func (m *ProbingMap[K, V]) free(slots []*Entry[K, V], states []slotState) {
	if len(slots) == 0 {
		return
	}
	m.allocator.FreeSlots(slots)
	m.allocator.FreeStates(unsafeConvertSlice[uint8](states))
}

func (m *ProbingMap[K, V]) newCursor() cursor[K, V] {
	return &probingCursor[K, V]{m: m, current: -1, last: -1}
}

// probingCursor is positioned at slot current. last is the slot returned
// before current, where the cursor goes back to after a removal.
type probingCursor[K comparable, V comparable] struct {
	m       *ProbingMap[K, V]
	current int
	last    int
}

func (c *probingCursor[K, V]) peek() int {
	states := c.m.states
	for i := c.current + 1; i < len(states); i++ {
		if states[i] == slotOccupied {
			return i
		}
	}
	return -1
}

func (c *probingCursor[K, V]) hasNext() bool {
	return c.peek() >= 0
}

func (c *probingCursor[K, V]) next() *Entry[K, V] {
	i := c.peek()
	if i < 0 {
		panic(ErrNoSuchElement)
	}
	c.last, c.current = c.current, i
	return c.m.slots[i]
}

func (c *probingCursor[K, V]) remove() {
	c.m.removeSlot(c.current)
	c.current = c.last
}

func (m *ProbingMap[K, V]) checkInvariants() {
	if invariants {
		if len(m.slots) != len(m.states) {
			panic(fmt.Sprintf("invariant failed: %d slots, but %d states\n%s",
				len(m.slots), len(m.states), m.debugString()))
		}

		// For every occupied slot, verify we can retrieve the key by probing
		// and that it is the only copy of the key. Count the number of
		// occupied slots.
		var used int
		for i, s := range m.states {
			switch s {
			case slotEmpty, slotTombstone:
				if m.slots[i] != nil {
					panic(fmt.Sprintf("invariant failed: slot(%d): %s slot holds %v\n%s",
						i, s, m.slots[i], m.debugString()))
				}
			case slotOccupied:
				e := m.slots[i]
				if e == nil {
					panic(fmt.Sprintf("invariant failed: slot(%d): occupied slot is nil\n%s",
						i, m.debugString()))
				}
				if j := m.find(e.key); j != i {
					panic(fmt.Sprintf("invariant failed: slot(%d): %v found at %d [home=%d]\n%s",
						i, e.key, j, m.hash(e.key)%uint64(len(m.slots)), m.debugString()))
				}
				used++
			default:
				panic(fmt.Sprintf("invariant failed: slot(%d): unexpected %s\n%s", i, s, m.debugString()))
			}
		}

		if used != m.count {
			panic(fmt.Sprintf("invariant failed: found %d occupied slots, but count is %d\n%s",
				used, m.count, m.debugString()))
		}
	}
}

func (m *ProbingMap[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "length=%d  count=%d  load-factor=%.2f  generation=%d\n",
		len(m.slots), m.count, m.loadFactor, m.gen)
	for i, s := range m.states {
		switch s {
		case slotOccupied:
			e := m.slots[i]
			fmt.Fprintf(&buf, "  %4d: %v [home=%d]\n", i, e, m.hash(e.key)%uint64(len(m.slots)))
		default:
			fmt.Fprintf(&buf, "  %4d: %s\n", i, s)
		}
	}
	return buf.String()
}

// probeSeq maintains the state for a quadratic probe sequence of the form
//
//	p(j) := (home + j^2) mod length
//
// where home is the key's hash modulo length. On a prime length the offsets
// j^2 mod length take (length+1)/2 distinct values and repeat with period
// length, so the sequence is done after length steps.
type probeSeq struct {
	length int
	home   int
	offset int
	index  int
}

func makeProbeSeq(hash uint64, length int) probeSeq {
	home := int(hash % uint64(length))
	return probeSeq{
		length: length,
		home:   home,
		offset: home,
		index:  0,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	j := uint64(s.index)
	s.offset = int((uint64(s.home) + j*j) % uint64(s.length))
	return s
}

func (s probeSeq) done() bool {
	return s.index >= s.length
}

func (s probeSeq) String() string {
	return fmt.Sprintf("length=%d home=%d offset=%d index=%d", s.length, s.home, s.offset, s.index)
}
