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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbingInitialCapacity(t *testing.T) {
	testCases := []struct {
		initialCapacity int
		expected        int
	}{
		{0, 53},
		{-5, 53},
		{1, 2},
		{2, 2},
		{4, 5},
		{10, 11},
		{53, 53},
		{54, 59},
		{100, 101},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprint(c.initialCapacity), func(t *testing.T) {
			m := NewProbing[int, int](c.initialCapacity)
			require.EqualValues(t, c.expected, m.capacity())
			require.EqualValues(t, c.expected, len(m.states))
		})
	}
}

func TestProbingRehash(t *testing.T) {
	m := NewProbing[int, int](7)
	lengths := []int{m.capacity()}
	for i := 0; i < 100; i++ {
		_, _, err := m.Put(i, i)
		require.NoError(t, err)
		require.Less(t, float64(m.Len())/float64(m.capacity()), 0.75)
		if c := m.capacity(); c != lengths[len(lengths)-1] {
			lengths = append(lengths, c)
		}
	}
	// Every length is the smallest prime >= 2*previous+1.
	require.Equal(t, []int{7, 17, 37, 79, 163}, lengths)
	for _, n := range lengths {
		require.True(t, isPrime(n), n)
	}
}

func TestProbingTombstones(t *testing.T) {
	m := NewProbing[int, string](7)

	// 3 and 10 share home slot 3, so 10 lands one step further on.
	_, _, err := m.Put(3, "three")
	require.NoError(t, err)
	_, _, err = m.Put(10, "ten")
	require.NoError(t, err)
	require.EqualValues(t, 3, m.find(3))
	require.EqualValues(t, 4, m.find(10))

	_, removed, err := m.Remove(3)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, slotTombstone, m.states[3])
	require.Nil(t, m.slots[3])

	// The tombstone does not end the walk to 10.
	v, ok, err := m.Get(10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ten", v)
	_, ok, err = m.Get(3)
	require.NoError(t, err)
	require.False(t, ok)

	// Updating a key that sits past a tombstone updates it in place.
	_, replaced, err := m.Put(10, "TEN")
	require.NoError(t, err)
	require.True(t, replaced)
	require.EqualValues(t, 4, m.find(10))
	require.Equal(t, slotTombstone, m.states[3])

	// A new colliding key reuses the first tombstone of its sequence.
	_, _, err = m.Put(17, "seventeen")
	require.NoError(t, err)
	require.EqualValues(t, 3, m.find(17))
	require.Equal(t, slotOccupied, m.states[3])
	require.EqualValues(t, 2, m.Len())
}

func TestProbingRehashDropsTombstones(t *testing.T) {
	m := NewProbing[int, int](7)
	for _, k := range []int{0, 1, 2} {
		_, _, err := m.Put(k, k)
		require.NoError(t, err)
	}
	_, _, err := m.Remove(1)
	require.NoError(t, err)
	require.Equal(t, slotTombstone, m.states[1])

	for _, k := range []int{3, 4, 5} {
		_, _, err := m.Put(k, k)
		require.NoError(t, err)
	}
	require.EqualValues(t, 7, m.capacity())

	// The sixth live entry pushes the load factor to 6/7.
	_, _, err = m.Put(6, 6)
	require.NoError(t, err)
	require.EqualValues(t, 17, m.capacity())
	for i, s := range m.states {
		require.NotEqual(t, slotTombstone, s, "slot %d", i)
	}
	require.EqualValues(t, map[int]int{0: 0, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6}, toBuiltinMap[int, int](m))
}

func TestProbingExhausted(t *testing.T) {
	m := NewProbing[int, int](7)

	// Offsets j^2 mod 7 only reach {0, 1, 2, 4}. Keys 0, 7, 14 and 21 fill
	// exactly those slots while staying under the load factor.
	for _, k := range []int{0, 7, 14, 21} {
		_, _, err := m.Put(k, k)
		require.NoError(t, err)
	}
	require.EqualValues(t, 7, m.capacity())
	require.Equal(t, []slotState{
		slotOccupied, slotOccupied, slotOccupied, slotEmpty,
		slotOccupied, slotEmpty, slotEmpty,
	}, m.states)

	// The walk terminates even though it never meets an empty slot.
	_, _, err := m.Put(28, 28)
	require.ErrorIs(t, err, ErrProbeExhausted)
	require.EqualValues(t, 4, m.Len())
	_, ok, err := m.Get(35)
	require.NoError(t, err)
	require.False(t, ok)
	_, removed, err := m.Remove(35)
	require.NoError(t, err)
	require.False(t, removed)

	// Existing keys remain reachable and updatable.
	_, replaced, err := m.Put(21, -21)
	require.NoError(t, err)
	require.True(t, replaced)

	// A tombstone in the sequence gives the key somewhere to go.
	_, _, err = m.Remove(7)
	require.NoError(t, err)
	_, _, err = m.Put(28, 28)
	require.NoError(t, err)
	require.EqualValues(t, 1, m.find(28))
	require.EqualValues(t, 4, m.Len())
}

func TestProbingExhaustedDegenerate(t *testing.T) {
	// With a constant hash and the default load factor, the table starves
	// once the (length+1)/2 reachable slots are full.
	m := NewProbing[int, int](0, WithHash[int, int](func(int) uint64 { return 5 }))
	var err error
	for i := 0; err == nil; i++ {
		_, _, err = m.Put(i, i)
	}
	require.ErrorIs(t, err, ErrProbeExhausted)
	require.EqualValues(t, 53, m.capacity())
	require.EqualValues(t, 27, m.Len())
	require.Less(t, float64(m.Len())/float64(m.capacity()), 0.75)
}

func TestProbingString(t *testing.T) {
	m := NewProbing[int, string](3)
	require.Equal(t, "{\n\t()\n\t()\n\t()\n}", m.String())
	_, _, err := m.Put(1, "a")
	require.NoError(t, err)
	require.Equal(t, "{\n\t()\n\t(1, a)\n\t()\n}", m.String())
}

func TestProbingHashCode(t *testing.T) {
	put := func(m *ProbingMap[int, int], keys ...int) {
		for _, k := range keys {
			_, _, err := m.Put(k, k+1)
			require.NoError(t, err)
		}
	}

	// Without collisions the layout, and therefore the hash code, does not
	// depend on insertion order.
	a, b := NewProbing[int, int](0), NewProbing[int, int](0)
	put(a, 1, 2, 3)
	put(b, 3, 2, 1)
	require.Equal(t, a.HashCode(), b.HashCode())
	h := uint64(1)
	for i := 0; i < 53; i++ {
		var eh uint64
		if i >= 1 && i <= 3 {
			eh = 61*(61*7+uint64(i)) + uint64(i+1)
		}
		h = 31*h + eh
	}
	require.Equal(t, h, a.HashCode())

	// 0 and 53 collide. The maps are equal but their entries sit in
	// different slots.
	c, d := NewProbing[int, int](0), NewProbing[int, int](0)
	put(c, 0, 53)
	put(d, 53, 0)
	require.True(t, c.Equal(d))
	require.NotEqual(t, c.HashCode(), d.HashCode())
}

// countingAllocator counts the slot and state arrays handed out and
// returned.
type countingAllocator[K comparable, V comparable] struct {
	defaultAllocator[K, V]
	allocSlots, allocStates int
	freeSlots, freeStates   int
}

func (a *countingAllocator[K, V]) AllocSlots(n int) []*Entry[K, V] {
	a.allocSlots++
	return a.defaultAllocator.AllocSlots(n)
}

func (a *countingAllocator[K, V]) AllocStates(n int) []uint8 {
	a.allocStates++
	return a.defaultAllocator.AllocStates(n)
}

func (a *countingAllocator[K, V]) FreeSlots(v []*Entry[K, V]) {
	a.freeSlots++
	a.defaultAllocator.FreeSlots(v)
}

func (a *countingAllocator[K, V]) FreeStates(v []uint8) {
	a.freeStates++
	a.defaultAllocator.FreeStates(v)
}

func TestAllocator(t *testing.T) {
	a := &countingAllocator[int, int]{}
	m := NewProbing[int, int](7, WithAllocator[int, int](a))
	for i := 0; i < 100; i++ {
		_, _, err := m.Put(i, i)
		require.NoError(t, err)
	}

	// The initial arrays plus one set per rehash (7->17->37->79->163).
	const expected = 5
	require.EqualValues(t, expected, a.allocSlots)
	require.EqualValues(t, expected, a.allocStates)
	require.EqualValues(t, expected-1, a.freeSlots)
	require.EqualValues(t, expected-1, a.freeStates)

	m.Clear()
	require.EqualValues(t, expected+1, a.allocSlots)
	require.EqualValues(t, expected, a.freeSlots)

	m.Close()
	require.EqualValues(t, expected+1, a.freeSlots)
	require.EqualValues(t, expected+1, a.freeStates)

	// Close is idempotent.
	m.Close()
	require.EqualValues(t, expected+1, a.freeSlots)
}

func TestProbeSeq(t *testing.T) {
	genSeq := func(n int, hash uint64, length int) []int {
		seq := makeProbeSeq(hash, length)
		vals := make([]int, n)
		for i := 0; i < n; i++ {
			vals[i] = seq.offset
			seq = seq.next()
		}
		return vals
	}
	genDistinct := func(hash uint64, length int) map[int]bool {
		seq := makeProbeSeq(hash, length)
		vals := make(map[int]bool)
		for ; !seq.done(); seq = seq.next() {
			vals[seq.offset] = true
		}
		return vals
	}

	require.Equal(t, []int{0, 1, 4, 2, 2, 4, 1}, genSeq(7, 0, 7))
	require.Equal(t, []int{5, 6, 2, 0, 0, 2, 6}, genSeq(7, 5, 7))
	require.Equal(t, []int{3, 4, 7, 1, 8, 6, 6, 8, 1, 7, 4, 3}, genSeq(12, 3, 11))

	// The hash is reduced modulo the length.
	require.Equal(t, genSeq(7, 3, 7), genSeq(7, 3+7*1000, 7))

	// On a prime length the sequence visits exactly (length+1)/2 distinct
	// slots before it is done.
	for _, length := range []int{3, 7, 11, 13, 53, 101} {
		for _, hash := range []uint64{0, 1, uint64(length) - 1, ^uint64(0)} {
			require.Len(t, genDistinct(hash, length), (length+1)/2, "length=%d hash=%d", length, hash)
		}
	}

	seq := makeProbeSeq(0, 2)
	require.False(t, seq.done())
	seq = seq.next().next()
	require.True(t, seq.done())
}

func TestSlotState(t *testing.T) {
	require.Equal(t, "empty", slotEmpty.String())
	require.Equal(t, "occupied", slotOccupied.String())
	require.Equal(t, "tombstone", slotTombstone.String())
}
