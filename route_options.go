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

import (
	"kori.dev/kori/router"
	"kori.dev/kori/schema"
)

// RouteOption configures one route at registration.
type RouteOption func(*routeConfig)

type routeConfig struct {
	request   *schema.Request
	response  *schema.Response
	onReqFail RequestFailureHandler
	onResFail ResponseFailureHandler
	meta      map[*router.MetaKey]any
}

// WithRequestSchema attaches a request schema to the route. The schema's
// provider tag must match the owning instance's validator; a mismatch fails
// registration immediately.
func WithRequestSchema(s *schema.Request) RouteOption {
	return func(rc *routeConfig) { rc.request = s }
}

// WithResponseSchema attaches a response schema to the route, validated
// against the materialized response before it is written.
func WithResponseSchema(s *schema.Response) RouteOption {
	return func(rc *routeConfig) { rc.response = s }
}

// WithRouteRequestFailureHandler overrides request validation failure
// handling for this route only.
func WithRouteRequestFailureHandler(h RequestFailureHandler) RouteOption {
	return func(rc *routeConfig) { rc.onReqFail = h }
}

// WithRouteResponseFailureHandler overrides response validation failure
// handling for this route only.
func WithRouteResponseFailureHandler(h ResponseFailureHandler) RouteOption {
	return func(rc *routeConfig) { rc.onResFail = h }
}

// WithMeta attaches opaque plugin metadata to the route record, readable
// later through [Kori.Routes] and [router.Record.MetaValue].
func WithMeta(key *router.MetaKey, value any) RouteOption {
	return func(rc *routeConfig) {
		if rc.meta == nil {
			rc.meta = make(map[*router.MetaKey]any)
		}
		rc.meta[key] = value
	}
}
