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
	"slices"
	"strings"
)

// bucket is the growable sequence of entries stored at one index of a
// ChainedMap.
type bucket[K comparable, V comparable] struct {
	entries []*Entry[K, V]
}

func (b *bucket[K, V]) append(e *Entry[K, V]) {
	b.entries = append(b.entries, e)
}

func (b *bucket[K, V]) get(i int) *Entry[K, V] {
	b.checkIndex(i)
	return b.entries[i]
}

func (b *bucket[K, V]) set(i int, e *Entry[K, V]) {
	b.checkIndex(i)
	b.entries[i] = e
}

// removeAt removes and returns the entry at position i, shifting the
// following entries down by one.
func (b *bucket[K, V]) removeAt(i int) *Entry[K, V] {
	b.checkIndex(i)
	e := b.entries[i]
	b.entries = slices.Delete(b.entries, i, i+1)
	return e
}

func (b *bucket[K, V]) len() int {
	return len(b.entries)
}

func (b *bucket[K, V]) isEmpty() bool {
	return len(b.entries) == 0
}

// contains reports whether an entry equal to e (same key and value) is in
// the bucket.
func (b *bucket[K, V]) contains(e *Entry[K, V]) bool {
	return slices.ContainsFunc(b.entries, e.Equal)
}

// indexOf returns the position of the entry with the given key, or -1.
func (b *bucket[K, V]) indexOf(key K) int {
	for i, e := range b.entries {
		if e.key == key {
			return i
		}
	}
	return -1
}

func (b *bucket[K, V]) clear() {
	clear(b.entries)
	b.entries = b.entries[:0]
}

func (b *bucket[K, V]) checkIndex(i int) {
	if i < 0 || i >= len(b.entries) {
		panic(fmt.Errorf("bucket position %d, length %d: %w", i, len(b.entries), ErrOutOfBounds))
	}
}

func (b *bucket[K, V]) String() string {
	var buf strings.Builder
	buf.WriteString("[")
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	buf.WriteString("]")
	return buf.String()
}
