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

package validate

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"kori.dev/kori/schema"
)

// MediaTypeJSON is the implicit media type of simple body schemas.
const MediaTypeJSON = "application/json"

// requestMediaType extracts the media type from a Content-Type header
// value, defaulting to application/json when the header is absent. A
// malformed header value is used as-is (lowercased); it will simply fail to
// match any declared type.
func requestMediaType(contentType string) string {
	if contentType == "" {
		return MediaTypeJSON
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}

	return mt
}

// resolveBodySchema matches the request media type against a body schema.
//
// For a simple schema the only supported type is application/json. For a
// content-mapped schema matching uses, in order: exact match, subtype
// wildcard ("type/*"), full wildcard ("*/*"). First match wins.
//
// Returns the schema to validate against and the media type key it was
// found under, or a pre-validation failure when nothing matches.
func resolveBodySchema(b *schema.BodySchema, mediaType string) (schema.Schema, string, *schema.FieldFailure) {
	if !b.IsContent() {
		if mediaType != MediaTypeJSON {
			return schema.Schema{}, "", schema.UnsupportedMediaType([]string{MediaTypeJSON})
		}

		return b.Simple(), MediaTypeJSON, nil
	}

	content := b.Content()

	if s, ok := content[mediaType]; ok {
		return s, mediaType, nil
	}

	if slash := strings.IndexByte(mediaType, '/'); slash >= 0 {
		subtypeWildcard := mediaType[:slash] + "/*"
		if s, ok := content[subtypeWildcard]; ok {
			return s, subtypeWildcard, nil
		}
	}

	if s, ok := content["*/*"]; ok {
		return s, "*/*", nil
	}

	return schema.Schema{}, "", schema.UnsupportedMediaType(b.MediaTypes())
}

// parseBody decodes raw body bytes according to the resolved media type.
//
// JSON decodes into the generic any shape; forms decode to url.Values; YAML
// decodes like JSON; text media types yield the string; everything else is
// passed through as raw bytes.
func parseBody(mediaType string, data []byte) (any, error) {
	switch {
	case mediaType == MediaTypeJSON || strings.HasSuffix(mediaType, "+json"):
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}

		return v, nil

	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, fmt.Errorf("decode form body: %w", err)
		}

		return values, nil

	case mediaType == "application/yaml" || mediaType == "application/x-yaml" ||
		mediaType == "text/yaml" || strings.HasSuffix(mediaType, "+yaml"):
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode yaml body: %w", err)
		}

		return v, nil

	case strings.HasPrefix(mediaType, "text/"):
		return string(data), nil

	default:
		return data, nil
	}
}
