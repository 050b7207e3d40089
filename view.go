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

import "iter"

// KeyView is a view of the keys of a table. It holds no storage: Len,
// Contains and iteration read the table, and Remove and Clear modify it.
type KeyView[K comparable, V comparable] struct {
	t table[K, V]
}

// Len returns the number of keys.
func (v KeyView[K, V]) Len() int {
	return v.t.Len()
}

// IsEmpty reports whether there are no keys.
func (v KeyView[K, V]) IsEmpty() bool {
	return v.t.IsEmpty()
}

// Contains reports whether key is in the table. A nil key is never
// contained.
func (v KeyView[K, V]) Contains(key K) bool {
	ok, err := v.t.ContainsKey(key)
	return err == nil && ok
}

// Remove removes key and its value from the table.
func (v KeyView[K, V]) Remove(key K) (bool, error) {
	_, ok, err := v.t.Remove(key)
	return ok, err
}

// RemoveIf removes every key satisfying pred, returning the number removed.
// pred must not modify the table; if it does, RemoveIf stops with
// ErrConcurrentModification.
func (v KeyView[K, V]) RemoveIf(pred func(key K) bool) (int, error) {
	return removeIf(v.Iterator(), pred)
}

// Add always fails with ErrUnsupported.
func (v KeyView[K, V]) Add(key K) error {
	return ErrUnsupported
}

// Clear removes every entry from the table.
func (v KeyView[K, V]) Clear() {
	v.t.Clear()
}

// Iterator returns a fail-fast iterator over the keys.
func (v KeyView[K, V]) Iterator() Iterator[K] {
	return newIterator(v.t, (*Entry[K, V]).Key)
}

// All returns an iterator over the keys.
func (v KeyView[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range v.t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Slice returns the keys in iteration order.
func (v KeyView[K, V]) Slice() []K {
	s := make([]K, 0, v.Len())
	for k := range v.All() {
		s = append(s, k)
	}
	return s
}

// ValueView is a view of the values of a table. The same value may appear
// more than once.
type ValueView[K comparable, V comparable] struct {
	t table[K, V]
}

// Len returns the number of values, counting duplicates.
func (v ValueView[K, V]) Len() int {
	return v.t.Len()
}

// IsEmpty reports whether there are no values.
func (v ValueView[K, V]) IsEmpty() bool {
	return v.t.IsEmpty()
}

// Contains reports whether at least one key maps to value.
func (v ValueView[K, V]) Contains(value V) bool {
	return v.t.ContainsValue(value)
}

// Remove removes the first entry, in iteration order, holding value.
func (v ValueView[K, V]) Remove(value V) (bool, error) {
	it := v.Iterator()
	for it.HasNext() {
		x, err := it.Next()
		if err != nil {
			return false, err
		}
		if x == value {
			return true, it.Remove()
		}
	}
	return false, nil
}

// RemoveIf removes every entry whose value satisfies pred, returning the
// number removed.
func (v ValueView[K, V]) RemoveIf(pred func(value V) bool) (int, error) {
	return removeIf(v.Iterator(), pred)
}

// Add always fails with ErrUnsupported.
func (v ValueView[K, V]) Add(value V) error {
	return ErrUnsupported
}

// Clear removes every entry from the table.
func (v ValueView[K, V]) Clear() {
	v.t.Clear()
}

// Iterator returns a fail-fast iterator over the values.
func (v ValueView[K, V]) Iterator() Iterator[V] {
	return newIterator(v.t, (*Entry[K, V]).Value)
}

// All returns an iterator over the values.
func (v ValueView[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, val := range v.t.All() {
			if !yield(val) {
				return
			}
		}
	}
}

// Slice returns the values in iteration order.
func (v ValueView[K, V]) Slice() []V {
	s := make([]V, 0, v.Len())
	for val := range v.All() {
		s = append(s, val)
	}
	return s
}

// EntryView is a view of the entries of a table. Entries returned by its
// iterator are the table's own: SetValue on them writes through.
type EntryView[K comparable, V comparable] struct {
	t table[K, V]
}

// Len returns the number of entries.
func (v EntryView[K, V]) Len() int {
	return v.t.Len()
}

// IsEmpty reports whether there are no entries.
func (v EntryView[K, V]) IsEmpty() bool {
	return v.t.IsEmpty()
}

// Contains reports whether the table maps e's key to a value equal to e's
// value.
func (v EntryView[K, V]) Contains(e *Entry[K, V]) bool {
	if e == nil {
		return false
	}
	val, ok, err := v.t.Get(e.key)
	return err == nil && ok && val == e.value
}

// Remove removes e's key from the table if it maps to a value equal to e's
// value. It returns ErrNilArgument for a nil entry.
func (v EntryView[K, V]) Remove(e *Entry[K, V]) (bool, error) {
	if e == nil {
		return false, nilArgument("remove entry")
	}
	if !v.Contains(e) {
		return false, nil
	}
	_, ok, err := v.t.Remove(e.key)
	return ok, err
}

// RemoveIf removes every entry satisfying pred, returning the number
// removed.
func (v EntryView[K, V]) RemoveIf(pred func(e *Entry[K, V]) bool) (int, error) {
	return removeIf(v.Iterator(), pred)
}

// Add always fails with ErrUnsupported.
func (v EntryView[K, V]) Add(e *Entry[K, V]) error {
	return ErrUnsupported
}

// Clear removes every entry from the table.
func (v EntryView[K, V]) Clear() {
	v.t.Clear()
}

// Iterator returns a fail-fast iterator over the entries.
func (v EntryView[K, V]) Iterator() Iterator[*Entry[K, V]] {
	return newIterator(v.t, func(e *Entry[K, V]) *Entry[K, V] { return e })
}

// All returns an iterator over the entries.
func (v EntryView[K, V]) All() iter.Seq[*Entry[K, V]] {
	return func(yield func(*Entry[K, V]) bool) {
		it := v.Iterator()
		for it.HasNext() {
			e, err := it.Next()
			if err != nil || !yield(e) {
				return
			}
		}
	}
}

// Slice returns the entries in iteration order.
func (v EntryView[K, V]) Slice() []*Entry[K, V] {
	s := make([]*Entry[K, V], 0, v.Len())
	for e := range v.All() {
		s = append(s, e)
	}
	return s
}
