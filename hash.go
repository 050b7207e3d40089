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
	"hash/maphash"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// maxCapacity is the largest table length either engine will allocate.
const maxCapacity = 1<<31 - 1

// hashSeed is shared by every table in the process so that HashCode is
// comparable across tables built with the default hash functions.
var hashSeed = maphash.MakeSeed()

// IntegerHash hashes an integer to its own value. Keys that differ by a
// multiple of the table length therefore share a home index, which makes
// collisions easy to construct.
func IntegerHash[T constraints.Integer](v T) uint64 {
	return uint64(v)
}

// StringHash hashes a string with xxhash.
func StringHash[T ~string](v T) uint64 {
	return xxhash.Sum64String(string(v))
}

// defaultHash returns the hash function used for values of type T when no
// WithHash or WithValueHash option is given. Integer kinds hash to
// themselves, string kinds use xxhash and everything else falls back to
// hash/maphash.
func defaultHash[T comparable]() func(T) uint64 {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		return func(v T) uint64 { return StringHash(*(*string)(unsafe.Pointer(&v))) }
	case reflect.Int:
		return func(v T) uint64 { return IntegerHash(*(*int)(unsafe.Pointer(&v))) }
	case reflect.Int8:
		return func(v T) uint64 { return IntegerHash(*(*int8)(unsafe.Pointer(&v))) }
	case reflect.Int16:
		return func(v T) uint64 { return IntegerHash(*(*int16)(unsafe.Pointer(&v))) }
	case reflect.Int32:
		return func(v T) uint64 { return IntegerHash(*(*int32)(unsafe.Pointer(&v))) }
	case reflect.Int64:
		return func(v T) uint64 { return IntegerHash(*(*int64)(unsafe.Pointer(&v))) }
	case reflect.Uint:
		return func(v T) uint64 { return IntegerHash(*(*uint)(unsafe.Pointer(&v))) }
	case reflect.Uint8:
		return func(v T) uint64 { return IntegerHash(*(*uint8)(unsafe.Pointer(&v))) }
	case reflect.Uint16:
		return func(v T) uint64 { return IntegerHash(*(*uint16)(unsafe.Pointer(&v))) }
	case reflect.Uint32:
		return func(v T) uint64 { return IntegerHash(*(*uint32)(unsafe.Pointer(&v))) }
	case reflect.Uint64:
		return func(v T) uint64 { return IntegerHash(*(*uint64)(unsafe.Pointer(&v))) }
	case reflect.Uintptr:
		return func(v T) uint64 { return IntegerHash(*(*uintptr)(unsafe.Pointer(&v))) }
	}
	// NB: maphash.Comparable panics if T is an interface type holding a
	// dynamic value that is not comparable.
	return func(v T) uint64 { return maphash.Comparable(hashSeed, v) }
}

// nillable reports whether values of type T can be nil.
func nillable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

// isNil reports whether v is nil. It must only be called when nillable[T]
// is true.
func isNil[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsNil()
}

// isPrime reports whether n is prime using trial division up to sqrt(n).
func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// nextPrime returns the smallest prime >= n.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}
