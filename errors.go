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

package kori

import "errors"

var (
	// ErrStarted is the panic value (wrapped) when configuration is
	// attempted after Start: registering routes, adding hooks, creating
	// children, or calling Start a second time.
	ErrStarted = errors.New("kori: instance already started")

	// ErrResponseAlreadyBuilt is the panic value (wrapped) when a handler
	// builds a second response on the same context.
	ErrResponseAlreadyBuilt = errors.New("kori: response already built")

	// ErrNoResponse is reported when a handler returns nil without building
	// a response.
	ErrNoResponse = errors.New("kori: handler returned without building a response")
)
