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

import "fmt"

// Entry holds a key and value. The key is fixed at creation; the value can
// be replaced in place with SetValue, which writes through to the table the
// entry belongs to.
type Entry[K comparable, V comparable] struct {
	key   K
	value V
}

// NewEntry returns a detached entry, typically used to query an EntryView.
// It returns ErrNilArgument if key or value is nil.
func NewEntry[K comparable, V comparable](key K, value V) (*Entry[K, V], error) {
	if nillable[K]() && isNil(key) {
		return nil, nilArgument("entry")
	}
	if nillable[V]() && isNil(value) {
		return nil, nilArgument("entry")
	}
	return &Entry[K, V]{key: key, value: value}, nil
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K {
	return e.key
}

// Value returns the entry's value.
func (e *Entry[K, V]) Value() V {
	return e.value
}

// SetValue replaces the entry's value and returns the previous one.
func (e *Entry[K, V]) SetValue(value V) (V, error) {
	if nillable[V]() && isNil(value) {
		var zero V
		return zero, nilArgument("set value")
	}
	old := e.value
	e.value = value
	return old, nil
}

// Equal reports whether o holds the same key and the same value.
func (e *Entry[K, V]) Equal(o *Entry[K, V]) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	return e.key == o.key && e.value == o.value
}

func (e *Entry[K, V]) String() string {
	return fmt.Sprintf("(%v, %v)", e.key, e.value)
}
