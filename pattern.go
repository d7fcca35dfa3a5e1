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
	"strings"

	"github.com/grafana/regexp"
)

// A segment is one element of a parsed route template: either a literal run
// of characters matched verbatim, or a named capture with a regular
// expression constraint. Segments are kept as plain data next to the fused
// expression so patterns can be inspected independently of the regex engine.
type segment struct {
	literal    string
	name       string
	constraint string
	capture    bool
}

// Pattern is a compiled route template.
//
// Templates are '/'-separated paths where <name:regex> introduces a named
// capture constrained by regex:
//
//	/users/<id:([0-9]+)>
//	/files/<path:(.+)>
//
// The compiled expression is anchored at both ends, so a pattern matches
// whole paths only, never prefixes. A single trailing slash on the request
// path is tolerated: /users/42 and /users/42/ match the same pattern.
// A capture whose constraint can cross '/' (such as (.+)) consumes the rest
// of the path and belongs in the final segment of the template.
type Pattern struct {
	template string
	segments []segment
	names    []string
	groups   []int
	re       *regexp.Regexp
}

// parser modes while scanning a template.
const (
	modeLiteral = iota
	modeName
	modeConstraint
)

// CompilePattern compiles a route template into a Pattern. The template must
// begin with '/'. Compilation fails on an unterminated or unnamed capture,
// a duplicate capture name, or an invalid constraint expression; these are
// build-time errors and never occur during matching.
func CompilePattern(template string) (*Pattern, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, fmt.Errorf("%w: %q", ErrPatternInvalid, template)
	}

	// A trailing slash is not significant: /users/ compiles exactly like
	// /users. The bare root "/" compiles to the root-only pattern.
	trimmed := strings.TrimRight(template, "/")

	var (
		segments []segment
		names    []string
		lit      strings.Builder
		name     strings.Builder
		cons     strings.Builder
		mode     = modeLiteral
	)

	flushLiteral := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for _, c := range trimmed {
		switch mode {
		case modeLiteral:
			if c == '<' {
				flushLiteral()
				mode = modeName
				continue
			}
			lit.WriteRune(c)
		case modeName:
			if c == ':' {
				mode = modeConstraint
				continue
			}
			name.WriteRune(c)
		case modeConstraint:
			if c == '>' {
				seg := segment{name: name.String(), constraint: cons.String(), capture: true}
				name.Reset()
				cons.Reset()
				if seg.name == "" {
					return nil, fmt.Errorf("%w: %q", ErrCaptureNameEmpty, template)
				}
				if !validCaptureName(seg.name) {
					return nil, fmt.Errorf("%w: %q in %q", ErrCaptureNameInvalid, seg.name, template)
				}
				for _, n := range names {
					if n == seg.name {
						return nil, fmt.Errorf("%w: %q in %q", ErrCaptureNameDuplicate, seg.name, template)
					}
				}
				segments = append(segments, seg)
				names = append(names, seg.name)
				mode = modeLiteral
				continue
			}
			cons.WriteRune(c)
		}
	}
	if mode != modeLiteral {
		return nil, fmt.Errorf("%w: %q", ErrCaptureUnterminated, template)
	}
	flushLiteral()

	re, err := fuse(segments)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCaptureConstraintInvalid, template, err)
	}

	groups := make([]int, len(names))
	for i, n := range names {
		groups[i] = re.SubexpIndex(n)
	}

	return &Pattern{
		template: template,
		segments: segments,
		names:    names,
		groups:   groups,
		re:       re,
	}, nil
}

// fuse assembles the anchored expression for a segment list. Literals are
// escaped so they match verbatim; captures become named groups, which keeps
// extraction correct even when a constraint contains its own groups.
func fuse(segments []segment) (*regexp.Regexp, error) {
	var b strings.Builder
	for _, s := range segments {
		if s.capture {
			fmt.Fprintf(&b, "(?P<%s>%s)", s.name, s.constraint)
			continue
		}
		b.WriteString(regexp.QuoteMeta(s.literal))
	}
	if b.Len() == 0 {
		return regexp.Compile("^/$")
	}
	return regexp.Compile("^" + b.String() + "/?$")
}

// validCaptureName reports whether a capture name is usable as a regex group
// name: letters, digits and underscores only.
func validCaptureName(name string) bool {
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// Match tests path against the pattern. On a match it returns the captures
// in the order they appear in the template. Matching is deterministic and
// side-effect free: the same (pattern, path) pair always yields the same
// result.
func (p *Pattern) Match(path string) (Captures, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return Captures{}, false
	}
	if len(p.names) == 0 {
		return Captures{}, true
	}
	values := make([]string, len(p.names))
	for i, idx := range p.groups {
		values[i] = m[idx]
	}
	return Captures{names: p.names, values: values}, true
}

// Matches reports whether path matches the pattern without extracting
// captures. It is cheaper than Match when only the boolean is needed.
func (p *Pattern) Matches(path string) bool {
	return p.re.MatchString(path)
}

// Template returns the original template text the pattern was compiled from.
func (p *Pattern) Template() string {
	return p.template
}

// CaptureNames returns the capture names in appearance order.
func (p *Pattern) CaptureNames() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// String implements fmt.Stringer.
func (p *Pattern) String() string {
	return p.template
}
