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

// Plugin is a reusable configuration unit: it receives an instance, may
// register routes and hooks or create children on it, and returns the
// instance further configuration should continue on.
//
// A plugin that wants its routes namespaced creates a child and returns the
// parent, keeping its prefix to itself:
//
//	func Health() kori.Plugin {
//	    return func(k *Kori) *Kori {
//	        k.CreateChild(kori.ChildOptions{Prefix: "/health"}).
//	            Get("/live", liveHandler).
//	            Get("/ready", readyHandler)
//
//	        return k
//	    }
//	}
//
// Plugins attach per-route metadata with [WithMeta] under their own
// [router.MetaKey] tokens and read it back via [Kori.Routes], which is how
// documentation generators discover what to describe.
type Plugin func(k *Kori) *Kori
