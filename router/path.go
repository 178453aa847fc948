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

import "strings"

// JoinPaths joins a prefix and a path into a single path, collapsing
// duplicate slashes at the join point only. Slashes inside either segment
// are preserved as-is; full normalization happens in [NormalizePath] when a
// route record is built.
//
// Joining two empty strings yields "/". Joining a prefix with an empty path
// yields the prefix itself with its trailing slash collapsed.
//
// Example:
//
//	router.JoinPaths("/api/", "/users") // "/api/users"
//	router.JoinPaths("", "")            // "/"
//	router.JoinPaths("/api/", "")       // "/api"
func JoinPaths(prefix, path string) string {
	if prefix == "" && path == "" {
		return "/"
	}
	if prefix == "" {
		return ensureLeadingSlash(path)
	}
	if path == "" {
		trimmed := strings.TrimRight(prefix, "/")
		if trimmed == "" {
			return "/"
		}

		return ensureLeadingSlash(trimmed)
	}

	joined := strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")

	return ensureLeadingSlash(joined)
}

// NormalizePath normalizes a fully-qualified route path: always a leading
// slash, no duplicate slashes, and no trailing slash unless the path is
// exactly "/".
//
// Example:
//
//	router.NormalizePath("api//users/") // "/api/users"
//	router.NormalizePath("")            // "/"
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	var sb strings.Builder
	sb.Grow(len(path) + 1)
	sb.WriteByte('/')

	prevSlash := true
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
			sb.WriteByte('/')

			continue
		}
		prevSlash = false
		sb.WriteByte(c)
	}

	normalized := sb.String()
	if len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = normalized[:len(normalized)-1]
	}

	return normalized
}

// ensureLeadingSlash prepends "/" if the path does not already start with one.
func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}

	return "/" + path
}
