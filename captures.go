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

// Captures holds the named path substrings extracted by a pattern match,
// in the order the captures appear in the template. A fresh value is
// produced for every matched request and is read-only to handlers.
//
// Lookups scan linearly; routes carry a handful of captures at most, so a
// scan beats hashing here.
type Captures struct {
	names  []string
	values []string
}

// Get returns the value captured under name and whether the name exists.
func (c Captures) Get(name string) (string, bool) {
	for i, n := range c.names {
		if n == name {
			return c.values[i], true
		}
	}
	return "", false
}

// Value returns the value captured under name, or "" when the name is not
// present. Use Get to distinguish a missing name from an empty capture.
func (c Captures) Value(name string) string {
	v, _ := c.Get(name)
	return v
}

// Names returns the capture names in the order they appear in the template.
func (c Captures) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of captures.
func (c Captures) Len() int {
	return len(c.names)
}
