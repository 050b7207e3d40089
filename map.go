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

// Package hashtable implements a unique-key map in two collision
// resolution strategies sharing one Map interface.
//
// # ChainedMap
//
// A ChainedMap is an array of buckets. Every bucket is a growable sequence
// of entries whose keys hash to that index; collisions are resolved by
// appending to the bucket. The table grows to 2*length+1 buckets when the
// average bucket length reaches 10*loadFactor.
//
// # ProbingMap
//
// A ProbingMap is a flat, prime-sized array of entries paired with a
// parallel array of slot states (empty, occupied, tombstone). Collisions
// are resolved with quadratic probing from the home index h:
//
//	p(j) := (h + j^2) mod length, j = 0, 1, 2, ...
//
// Deletion leaves a tombstone so that probe sequences passing through the
// slot keep going. Lookups stop only at an empty slot; insertion reuses the
// first tombstone seen. The table grows to the next prime >= 2*length+1
// when count/length reaches loadFactor, dropping every tombstone.
//
// Quadratic probing on a prime table is only guaranteed to reach a free
// slot while the table is at most half full. The default load factor of
// 0.75 is above that bound, so a Put whose probe sequence sees no empty
// slot and no tombstone fails with ErrProbeExhausted rather than looping.
//
// # Views and iterators
//
// Keys, Values and Entries return views backed by the table: they hold no
// storage of their own, removals through a view remove from the table, and
// insertion through a view is unsupported. A view's Iterator is fail-fast:
// every structural change (inserting a new key, removing, clearing,
// rehashing) advances the table's generation, and an iterator whose
// snapshot of the generation is stale fails with ErrConcurrentModification.
// The iterator's own Remove keeps it in step with the table.
//
// Neither map is goroutine-safe.
package hashtable

import (
	"iter"
	"reflect"
)

const debug = false

// Map is the contract shared by ChainedMap and ProbingMap. Operations that
// take a key return ErrNilArgument when K is a nillable type and the key is
// nil; Put does the same for a nil value.
type Map[K comparable, V comparable] interface {
	// Len returns the number of entries in the map.
	Len() int
	// IsEmpty reports whether Len() == 0.
	IsEmpty() bool
	// ContainsKey reports whether key is present.
	ContainsKey(key K) (bool, error)
	// ContainsValue reports whether any key maps to value.
	ContainsValue(value V) bool
	// Get retrieves the value for key, returning ok=false if the key is
	// not present.
	Get(key K) (value V, ok bool, err error)
	// Put associates value with key. If the key was present its previous
	// value is returned with replaced=true and the size is unchanged.
	Put(key K, value V) (old V, replaced bool, err error)
	// Remove deletes key, returning the value it had.
	Remove(key K) (old V, removed bool, err error)
	// PutAll puts every entry of other into the map.
	PutAll(other Map[K, V]) error
	// Clear removes every entry and restores the initial capacity.
	Clear()
	// Keys returns a view of the keys backed by the map.
	Keys() KeyView[K, V]
	// Values returns a view of the values backed by the map.
	Values() ValueView[K, V]
	// Entries returns a view of the entries backed by the map.
	Entries() EntryView[K, V]
	// All returns an iterator over every key and value.
	All() iter.Seq2[K, V]
	// Equal reports whether other is a Map[K, V] of the same size in which
	// every key of this map maps to an equal value. Any other type is
	// simply not equal.
	Equal(other any) bool
	// HashCode returns a hash of the whole map, 0 when empty.
	HashCode() uint64
	// String dumps the full table layout.
	String() string
}

// table is implemented by the storage engines and is everything the views
// and iterators need from them.
type table[K comparable, V comparable] interface {
	Map[K, V]
	// generation returns the structural modification counter.
	generation() uint64
	// newCursor returns a cursor positioned before the first entry.
	newCursor() cursor[K, V]
}

// cursor walks the physical storage of a table.
type cursor[K comparable, V comparable] interface {
	// hasNext reports whether a live entry exists after the current
	// position.
	hasNext() bool
	// next moves to the following live entry and returns it. It must only
	// be called when hasNext is true.
	next() *Entry[K, V]
	// remove removes the entry at the current position through the table
	// and steps the cursor back so that next continues with the entry that
	// followed it.
	remove()
}

var (
	_ table[int, int] = (*ChainedMap[int, int])(nil)
	_ table[int, int] = (*ProbingMap[int, int])(nil)
)

func putAll[K comparable, V comparable](m, other Map[K, V]) error {
	if other == nil {
		return nilArgument("put all")
	}
	for k, v := range other.All() {
		if _, _, err := m.Put(k, v); err != nil {
			return err
		}
	}
	return nil
}

func mapsEqual[K comparable, V comparable](m Map[K, V], other any) bool {
	o, ok := other.(Map[K, V])
	if !ok || o == nil {
		return false
	}
	// A typed nil such as (*ProbingMap[K, V])(nil) is not a map.
	switch v := reflect.ValueOf(o); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return false
		}
	}
	if o.Len() != m.Len() {
		return false
	}
	for k, v := range m.All() {
		ov, found, err := o.Get(k)
		if err != nil || !found || ov != v {
			return false
		}
	}
	return true
}
