// Copyright 2025 The Kori Authors
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

package router

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Match is the result of a successful route lookup.
type Match struct {
	// ID identifies the matched route record in the registry.
	ID RouteID

	// Params holds extracted path parameters. Optional parameters absent
	// from the request path are absent from the map. Params is nil for
	// routes without parameters.
	Params map[string]string

	// Template is the registered path template (e.g. "/users/:id").
	Template string
}

// MatchFunc is a compiled, read-only route lookup function.
//
// The path argument may still carry a query string or fragment; both are
// stripped before matching. A HEAD request matches GET routes when no HEAD
// route is registered for the path. MatchFunc is safe for unsynchronized
// concurrent use.
type MatchFunc func(method, path string) (*Match, bool)

// Matcher compiles (method, path, id) triples into a [MatchFunc].
//
// Implementations are used in two strict phases: AddRoute during the
// single-threaded configuration phase, then exactly one Compile call before
// serving traffic. The default implementation is [NewRadixMatcher]; custom
// implementations can be swapped in without touching the executor.
type Matcher interface {
	// AddRoute registers one method+path+id triple. Method matching is
	// case-insensitive (normalized to uppercase internally). Registering
	// the same (method, path) pair twice returns [ErrDuplicateRoute].
	AddRoute(method, path string, id RouteID) error

	// Compile freezes registrations into a lookup function. Compile must
	// be called exactly once; further AddRoute or Compile calls fail.
	Compile() (MatchFunc, error)
}

// RadixMatcher is the default [Matcher], backed by one radix tree per HTTP
// method with regex-constrained parameter support.
//
// Supported path template segments:
//
//   - "users"          static segment, exact match
//   - ":id"            parameter, captures one segment
//   - ":id{[0-9]+}"    constrained parameter, captures when the regex matches
//   - ":rest?"         optional parameter, trailing position only
//
// Static edges win over parameter edges at every node. There is no
// backtracking: a constrained parameter that rejects a segment fails the
// whole lookup rather than retrying sibling branches.
type RadixMatcher struct {
	trees    map[string]*node
	compiled bool
}

// node is one radix tree node. Terminal nodes carry the route id and the
// original template for observability.
type node struct {
	edges    []edge
	param    *paramEdge
	id       RouteID
	template string
	terminal bool
}

// edge is a per-segment static child. Linear scan keeps the hot path free
// of map hashing for the typical small fan-out.
type edge struct {
	label string
	node  *node
}

// paramEdge is the single parameter child of a node. A node can have at
// most one parameter child (radix tree property), so conflicting parameter
// names at the same position are rejected at registration.
type paramEdge struct {
	key     string
	pattern *regexp.Regexp
	node    *node
}

// NewRadixMatcher creates an empty radix matcher.
func NewRadixMatcher() *RadixMatcher {
	return &RadixMatcher{trees: make(map[string]*node)}
}

// findChild returns the static child for the given segment, or nil.
func (n *node) findChild(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}

	return nil
}

// findOrCreateChild returns the static child for the segment, creating it
// if needed.
func (n *node) findOrCreateChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &node{}
	n.edges = append(n.edges, edge{label: segment, node: child})

	return child
}

// setTerminal marks n as a route endpoint, rejecting duplicates.
func (n *node) setTerminal(id RouteID, template string) error {
	if n.terminal {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, template)
	}
	n.terminal = true
	n.id = id
	n.template = template

	return nil
}

// parsedSegment is one parsed template segment.
type parsedSegment struct {
	literal  string
	key      string
	pattern  *regexp.Regexp
	isParam  bool
	optional bool
}

// parseSegment parses a single template segment.
//
// Parameter syntax: ":name", ":name{regex}", with an optional trailing "?"
// after the name or the closing brace.
func parseSegment(segment string) (parsedSegment, error) {
	if !strings.HasPrefix(segment, ":") {
		return parsedSegment{literal: segment}, nil
	}

	s := segment[1:]
	optional := false
	if strings.HasSuffix(s, "?") {
		optional = true
		s = s[:len(s)-1]
	}

	var pattern *regexp.Regexp
	if open := strings.IndexByte(s, '{'); open >= 0 {
		if !strings.HasSuffix(s, "}") {
			return parsedSegment{}, fmt.Errorf("%w: unterminated constraint in %q", ErrInvalidPattern, segment)
		}
		expr := s[open+1 : len(s)-1]
		s = s[:open]

		// Anchor the constraint so it must match the whole segment.
		compiled, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return parsedSegment{}, fmt.Errorf("%w: constraint %q: %v", ErrInvalidPattern, expr, err)
		}
		pattern = compiled
	}

	if s == "" {
		return parsedSegment{}, fmt.Errorf("%w: empty parameter name in %q", ErrInvalidPattern, segment)
	}

	return parsedSegment{key: s, pattern: pattern, isParam: true, optional: optional}, nil
}

// AddRoute implements [Matcher].
func (m *RadixMatcher) AddRoute(method, path string, id RouteID) error {
	if m.compiled {
		return ErrAlreadyCompiled
	}
	if !id.Valid() {
		return fmt.Errorf("%w: invalid route id", ErrInvalidPattern)
	}

	method = strings.ToUpper(method)
	path = NormalizePath(path)

	tree := m.trees[method]
	if tree == nil {
		tree = &node{}
		m.trees[method] = tree
	}

	if path == "/" {
		return tree.setTerminal(id, "/")
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	current := tree

	for i, raw := range segments {
		seg, err := parseSegment(raw)
		if err != nil {
			return err
		}
		isLast := i == len(segments)-1

		if seg.optional && !isLast {
			return fmt.Errorf("%w: optional parameter %q must be the trailing segment", ErrInvalidPattern, raw)
		}

		if !seg.isParam {
			current = current.findOrCreateChild(seg.literal)
		} else {
			if current.param == nil {
				current.param = &paramEdge{key: seg.key, pattern: seg.pattern, node: &node{}}
			} else if current.param.key != seg.key {
				return fmt.Errorf("%w: conflicting parameter names %q and %q at the same position",
					ErrInvalidPattern, current.param.key, seg.key)
			}

			// An optional trailing parameter also terminates the route at
			// its parent, so the shorter request path matches too.
			if seg.optional {
				if err := current.setTerminal(id, path); err != nil {
					return err
				}
			}
			current = current.param.node
		}

		if isLast {
			if err := current.setTerminal(id, path); err != nil {
				return err
			}
		}
	}

	return nil
}

// Compile implements [Matcher]. After Compile the tree is immutable and the
// returned function is safe for concurrent use.
func (m *RadixMatcher) Compile() (MatchFunc, error) {
	if m.compiled {
		return nil, ErrAlreadyCompiled
	}
	m.compiled = true

	trees := m.trees

	return func(method, path string) (*Match, bool) {
		method = strings.ToUpper(method)
		path = stripPathExtras(path)

		if tree := trees[method]; tree != nil {
			if m, ok := tree.lookup(path); ok {
				return m, true
			}
		}

		// A HEAD request without its own HEAD route matches the GET route
		// for the same path; only route lookup is affected.
		if method == http.MethodHead {
			if tree := trees[http.MethodGet]; tree != nil {
				return tree.lookup(path)
			}
		}

		return nil, false
	}, nil
}

// stripPathExtras removes the query string and fragment from a request path.
func stripPathExtras(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}

	return path
}

// lookup walks the tree for the given request path, extracting parameters.
//
// Segments are parsed on the fly with string slicing; no intermediate slice
// is allocated. The params map is allocated lazily on the first captured
// parameter.
func (n *node) lookup(path string) (*Match, bool) {
	if path == "" || path == "/" {
		if n.terminal {
			return &Match{ID: n.id, Template: n.template}, true
		}

		return nil, false
	}

	current := n
	var params map[string]string

	start := 0
	if path[0] == '/' {
		start = 1
	}
	pathLen := len(path)

	for start < pathLen {
		end := start
		for end < pathLen && path[end] != '/' {
			end++
		}
		segment := path[start:end]
		isLast := end >= pathLen

		// Collapse duplicate slashes in the request path.
		if segment == "" {
			start = end + 1

			continue
		}

		if next := current.findChild(segment); next != nil {
			current = next
		} else if current.param != nil {
			if current.param.pattern != nil && !current.param.pattern.MatchString(segment) {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 4)
			}
			params[current.param.key] = segment
			current = current.param.node
		} else {
			return nil, false
		}

		if isLast {
			if !current.terminal {
				return nil, false
			}

			return &Match{ID: current.id, Params: params, Template: current.template}, true
		}

		start = end + 1
	}

	// Trailing-slash request path: the loop consumed all segments.
	if current.terminal {
		return &Match{ID: current.id, Params: params, Template: current.template}, true
	}

	return nil, false
}
