// Copyright 2025 The Rivaas Authors
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

package dispatch

import (
	"fmt"
	"reflect"
)

// State is the type-indexed value store shared by every request. It is
// assembled once before serving and never mutated afterwards, so concurrent
// readers need no synchronization.
//
// Values are keyed by their concrete type: two values of different types
// never collide, and staging a second value of the same type replaces the
// first (last write wins at build time).
type State struct {
	values map[reflect.Type]any
}

// NewState builds a State holding the given values. It is also the natural
// way to assemble a fresh State in tests:
//
//	state := dispatch.NewState(db, cache)
//
// A nil value panics; state is assembled at build time, so a nil here is a
// programming error rather than a request-time condition.
func NewState(values ...any) *State {
	s := &State{values: make(map[reflect.Type]any, len(values))}
	for _, v := range values {
		s.set(v)
	}
	return s
}

func (s *State) set(v any) {
	if v == nil {
		panic(ErrStateValueNil)
	}
	s.values[reflect.TypeOf(v)] = v
}

// Len returns the number of stored values.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Get returns the value stored under T's type identity. A lookup for a type
// that was never stored reports an error wrapping ErrStateValueMissing; the
// caller decides whether that is fatal for the request.
//
// Lookups use the concrete type a value was stored under. To share a value
// through an interface, store a small named struct holding the interface
// field and look that struct up instead.
func Get[T any](s *State) (T, error) {
	var zero T
	if s == nil {
		return zero, fmt.Errorf("%w %s", ErrStateValueMissing, reflect.TypeFor[T]())
	}
	v, ok := s.values[reflect.TypeFor[T]()]
	if !ok {
		return zero, fmt.Errorf("%w %s", ErrStateValueMissing, reflect.TypeFor[T]())
	}
	return v.(T), nil
}

// MustGet is Get that panics when the value is absent. The dispatcher
// converts the panic into a 500 response for that request only, so MustGet
// in a handler means "this dependency is mandatory".
func MustGet[T any](s *State) T {
	v, err := Get[T](s)
	if err != nil {
		panic(err)
	}
	return v
}
