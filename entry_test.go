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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntry(t *testing.T) {
	e, err := NewEntry("k", 1)
	require.NoError(t, err)
	require.Equal(t, "k", e.Key())
	require.Equal(t, 1, e.Value())
	require.Equal(t, "(k, 1)", e.String())

	old, err := e.SetValue(2)
	require.NoError(t, err)
	require.Equal(t, 1, old)
	require.Equal(t, 2, e.Value())

	o, err := NewEntry("k", 2)
	require.NoError(t, err)
	require.True(t, e.Equal(o))
	require.True(t, e.Equal(e))
	_, _ = o.SetValue(3)
	require.False(t, e.Equal(o))
	require.False(t, e.Equal(nil))

	var nilEntry *Entry[string, int]
	require.True(t, nilEntry.Equal(nil))
	require.False(t, nilEntry.Equal(e))
}

func TestEntryNil(t *testing.T) {
	v := 1
	_, err := NewEntry[*int, *int](nil, &v)
	require.ErrorIs(t, err, ErrNilArgument)
	_, err = NewEntry[*int, *int](&v, nil)
	require.ErrorIs(t, err, ErrNilArgument)

	e, err := NewEntry(&v, &v)
	require.NoError(t, err)
	_, err = e.SetValue(nil)
	require.ErrorIs(t, err, ErrNilArgument)
	require.Same(t, &v, e.Value())
}

func TestBucket(t *testing.T) {
	var b bucket[int, string]
	require.True(t, b.isEmpty())
	require.Equal(t, "[]", b.String())

	for i, s := range []string{"a", "b", "c", "d"} {
		b.append(&Entry[int, string]{key: i, value: s})
	}
	require.EqualValues(t, 4, b.len())
	require.Equal(t, "[(0, a), (1, b), (2, c), (3, d)]", b.String())
	require.EqualValues(t, 2, b.indexOf(2))
	require.EqualValues(t, -1, b.indexOf(9))
	require.True(t, b.contains(&Entry[int, string]{key: 1, value: "b"}))
	require.False(t, b.contains(&Entry[int, string]{key: 1, value: "c"}))

	// Removal shifts the following entries down.
	e := b.removeAt(1)
	require.Equal(t, "b", e.value)
	require.Equal(t, "[(0, a), (2, c), (3, d)]", b.String())
	require.EqualValues(t, 1, b.indexOf(2))

	b.set(0, &Entry[int, string]{key: 0, value: "z"})
	require.Equal(t, "z", b.get(0).value)

	b.clear()
	require.True(t, b.isEmpty())
}

func TestBucketOutOfBounds(t *testing.T) {
	var b bucket[int, int]
	b.append(&Entry[int, int]{})

	outOfBounds := func(f func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok, "%v", r)
			require.True(t, errors.Is(err, ErrOutOfBounds), "%v", err)
		}()
		f()
	}
	outOfBounds(func() { b.get(1) })
	outOfBounds(func() { b.get(-1) })
	outOfBounds(func() { b.set(1, nil) })
	outOfBounds(func() { b.removeAt(5) })
	require.EqualValues(t, 1, b.len())
}
