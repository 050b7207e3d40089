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

import "unsafe"

// config holds the construction-time settings shared by ChainedMap and
// ProbingMap.
type config[K comparable, V comparable] struct {
	hash          func(key K) uint64
	valueHash     func(value V) uint64
	loadFactor    float64
	allocator     Allocator[K, V]
	keyNillable   bool
	valueNillable bool
}

func makeConfig[K comparable, V comparable](
	defaultLoadFactor float64, options []option[K, V],
) config[K, V] {
	c := config[K, V]{
		hash:          defaultHash[K](),
		valueHash:     defaultHash[V](),
		allocator:     defaultAllocator[K, V]{},
		keyNillable:   nillable[K](),
		valueNillable: nillable[V](),
	}
	for _, op := range options {
		op.apply(&c)
	}
	if c.loadFactor <= 0 {
		c.loadFactor = defaultLoadFactor
	}
	return c
}

// checkArgs returns ErrNilArgument if key, or value when checkValue is set,
// is nil.
func (c *config[K, V]) checkArgs(op string, key K, value V, checkValue bool) error {
	if c.keyNillable && isNil(key) {
		return nilArgument(op)
	}
	if checkValue && c.valueNillable && isNil(value) {
		return nilArgument(op)
	}
	return nil
}

func (c *config[K, V]) checkKey(op string, key K) error {
	var zero V
	return c.checkArgs(op, key, zero, false)
}

// entryHash combines the key and value hashes of e.
func (c *config[K, V]) entryHash(e *Entry[K, V]) uint64 {
	h := uint64(7)
	h = 61*h + c.hash(e.key)
	h = 61*h + c.valueHash(e.value)
	return h
}

// option provide an interface to do work on a table while it is being
// created.
type option[K comparable, V comparable] interface {
	apply(c *config[K, V])
}

type hashOption[K comparable, V comparable] struct {
	hash func(key K) uint64
}

func (op hashOption[K, V]) apply(c *config[K, V]) {
	c.hash = op.hash
}

// WithHash is an option to specify the hash function used to place keys.
// The table index of a key is hash(key) modulo the table length.
func WithHash[K comparable, V comparable](hash func(key K) uint64) option[K, V] {
	return hashOption[K, V]{hash}
}

type valueHashOption[K comparable, V comparable] struct {
	hash func(value V) uint64
}

func (op valueHashOption[K, V]) apply(c *config[K, V]) {
	c.valueHash = op.hash
}

// WithValueHash is an option to specify the hash function applied to values
// when computing HashCode.
func WithValueHash[K comparable, V comparable](hash func(value V) uint64) option[K, V] {
	return valueHashOption[K, V]{hash}
}

type loadFactorOption[K comparable, V comparable] struct {
	loadFactor float64
}

func (op loadFactorOption[K, V]) apply(c *config[K, V]) {
	c.loadFactor = op.loadFactor
}

// WithLoadFactor is an option to specify the load factor of a table. A load
// factor <= 0 is replaced by the table's default (0.8 for ChainedMap, 0.75
// for ProbingMap).
//
// ChainedMap rehashes when the average bucket length reaches
// 10*loadFactor. ProbingMap rehashes when count/length reaches loadFactor.
func WithLoadFactor[K comparable, V comparable](loadFactor float64) option[K, V] {
	return loadFactorOption[K, V]{loadFactor}
}

// Allocator specifies an interface for allocating and releasing the slot
// and state arrays used by a ProbingMap. The default allocator utilizes
// Go's builtin make() and allows the GC to reclaim memory. ChainedMap grows
// its buckets with append and does not consult the allocator.
//
// If the allocator is manually managing memory and requires that slots and
// states be freed then ProbingMap.Close must be called in order to ensure
// FreeSlots and FreeStates are called.
type Allocator[K comparable, V comparable] interface {
	// AllocSlots should return a slice equivalent to make([]*Entry[K,V], n).
	AllocSlots(n int) []*Entry[K, V]

	// AllocStates should return a slice equivalent to make([]uint8, n).
	AllocStates(n int) []uint8

	// FreeSlots can optional release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by AllocSlots.
	FreeSlots(v []*Entry[K, V])

	// FreeStates can optional release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocStates.
	FreeStates(v []uint8)
}

type defaultAllocator[K comparable, V comparable] struct{}

func (defaultAllocator[K, V]) AllocSlots(n int) []*Entry[K, V] {
	return make([]*Entry[K, V], n)
}

func (defaultAllocator[K, V]) AllocStates(n int) []uint8 {
	return make([]uint8, n)
}

func (defaultAllocator[K, V]) FreeSlots(v []*Entry[K, V]) {
}

func (defaultAllocator[K, V]) FreeStates(v []uint8) {
}

type allocatorOption[K comparable, V comparable] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(c *config[K, V]) {
	c.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a
// ProbingMap[K,V].
func WithAllocator[K comparable, V comparable](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}

func unsafeConvertSlice[Dest any, Src any](s []Src) []Dest {
	return unsafe.Slice((*Dest)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}
