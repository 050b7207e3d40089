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
	"fmt"
)

var (
	// ErrNilArgument is returned when a nil key or value is passed to an
	// operation that requires one.
	ErrNilArgument = errors.New("hashtable: nil argument")

	// ErrOutOfBounds is the panic value (wrapped) raised by positional access
	// into a bucket beyond its length.
	ErrOutOfBounds = errors.New("hashtable: index out of bounds")

	// ErrConcurrentModification is returned by an iterator when its table was
	// structurally modified by anything other than the iterator itself.
	ErrConcurrentModification = errors.New("hashtable: concurrent modification")

	// ErrNoSuchElement is returned by Iterator.Next when the iteration has
	// no more elements.
	ErrNoSuchElement = errors.New("hashtable: no such element")

	// ErrIllegalState is returned by Iterator.Remove when it is not
	// immediately preceded by a successful call to Next.
	ErrIllegalState = errors.New("hashtable: illegal iterator state")

	// ErrUnsupported is returned by view operations that would insert into
	// the table. It matches errors.ErrUnsupported.
	ErrUnsupported = fmt.Errorf("hashtable: view insertion: %w", errors.ErrUnsupported)

	// ErrProbeExhausted is returned by ProbingMap.Put when the probe
	// sequence of a key visits no empty slot and no tombstone.
	ErrProbeExhausted = errors.New("hashtable: probe sequence exhausted")
)

func nilArgument(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNilArgument)
}
