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

import "errors"

// Predefined router errors. All of them are configuration-class: they are
// raised during route registration or compilation, never per request.
var (
	// ErrDuplicateRoute is returned when the same (method, path) pair is
	// registered twice on a matcher.
	ErrDuplicateRoute = errors.New("duplicate route registration")

	// ErrAlreadyCompiled is returned when AddRoute is called after Compile,
	// or Compile is called more than once.
	ErrAlreadyCompiled = errors.New("matcher already compiled")

	// ErrInvalidPattern is returned when a path template cannot be parsed,
	// for example an optional parameter in a non-trailing position or an
	// invalid constraint regex.
	ErrInvalidPattern = errors.New("invalid route pattern")
)
