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

// Iterator is a fail-fast cursor over a view of a table.
type Iterator[T any] interface {
	// HasNext reports whether Next would return another element.
	HasNext() bool
	// Next returns the next element. It fails with
	// ErrConcurrentModification if the table was structurally modified
	// other than through this iterator, and with ErrNoSuchElement when the
	// iteration is over.
	Next() (T, error)
	// Remove removes the element last returned by Next from the table. It
	// may be called once per call to Next, and fails with ErrIllegalState
	// otherwise.
	Remove() error
}

// tableIterator projects every entry a cursor reaches into a T.
type tableIterator[K comparable, V comparable, T any] struct {
	t       table[K, V]
	cur     cursor[K, V]
	project func(e *Entry[K, V]) T
	// nextOK is set by a successful Next and cleared by Remove.
	nextOK bool
	// The generation the table must be at for the iterator to be valid.
	expectedGeneration uint64
}

func newIterator[K comparable, V comparable, T any](
	t table[K, V], project func(e *Entry[K, V]) T,
) *tableIterator[K, V, T] {
	return &tableIterator[K, V, T]{
		t:                  t,
		cur:                t.newCursor(),
		project:            project,
		expectedGeneration: t.generation(),
	}
}

func (it *tableIterator[K, V, T]) HasNext() bool {
	return it.cur.hasNext()
}

func (it *tableIterator[K, V, T]) Next() (T, error) {
	var zero T
	if it.t.generation() != it.expectedGeneration {
		return zero, ErrConcurrentModification
	}
	if !it.cur.hasNext() {
		return zero, ErrNoSuchElement
	}
	e := it.cur.next()
	it.nextOK = true
	return it.project(e), nil
}

func (it *tableIterator[K, V, T]) Remove() error {
	if it.t.generation() != it.expectedGeneration {
		return ErrConcurrentModification
	}
	if !it.nextOK {
		return ErrIllegalState
	}
	it.cur.remove()
	it.nextOK = false
	// The table advanced its generation for this removal.
	it.expectedGeneration++
	return nil
}

// removeIf removes every element of it that satisfies pred, returning the
// number removed. It stops at the first error from the iterator, which is
// ErrConcurrentModification if the table changed underneath it.
func removeIf[T any](it Iterator[T], pred func(T) bool) (int, error) {
	var n int
	for it.HasNext() {
		x, err := it.Next()
		if err != nil {
			return n, err
		}
		if !pred(x) {
			continue
		}
		if err := it.Remove(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
