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

package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCarriesProviderAndDefinition(t *testing.T) {
	t.Parallel()

	def := map[string]any{"type": "object"}
	s := New("jsonschema", def)

	assert.Equal(t, Provider("jsonschema"), s.Provider())
	assert.Equal(t, def, s.Definition())
	assert.False(t, s.IsZero())
	assert.True(t, Schema{}.IsZero())
}

func TestBodySchemaSimple(t *testing.T) {
	t.Parallel()

	b := SimpleBody(New("jsonschema", "def"))

	assert.False(t, b.IsContent())
	assert.Equal(t, Provider("jsonschema"), b.Provider())
	assert.Nil(t, b.MediaTypes())
}

func TestBodySchemaContent(t *testing.T) {
	t.Parallel()

	b := ContentBody(map[string]Schema{
		"application/json": New("jsonschema", "a"),
		"text/plain":       New("jsonschema", "b"),
		"*/*":              New("jsonschema", "c"),
	})

	assert.True(t, b.IsContent())
	assert.Equal(t, Provider("jsonschema"), b.Provider())
	assert.Equal(t, []string{"*/*", "application/json", "text/plain"}, b.MediaTypes())
}

func TestResponseSelectors(t *testing.T) {
	t.Parallel()

	r := NewResponse(map[string]*ResponseEntry{
		"default": SimpleEntry(New("jsonschema", "d")),
		"200":     SimpleEntry(New("jsonschema", "a")),
		"4XX":     SimpleEntry(New("jsonschema", "b")),
	})

	assert.Equal(t, []string{"200", "4XX", "default"}, r.Selectors())

	entry, ok := r.Entry("200")
	require.True(t, ok)
	assert.Equal(t, Provider("jsonschema"), entry.Provider())

	_, ok = r.Entry("500")
	assert.False(t, ok)
}

func TestFieldFailureError(t *testing.T) {
	t.Parallel()

	cause := errors.New("value must be an integer")

	rejected := Rejected(cause)
	assert.Equal(t, StageValidation, rejected.Stage)
	assert.Equal(t, KindSchemaRejected, rejected.Kind)
	assert.ErrorIs(t, rejected, cause)
	assert.Contains(t, rejected.Error(), "SCHEMA_REJECTED")
	assert.Contains(t, rejected.Error(), cause.Error())

	unsupported := UnsupportedMediaType([]string{"application/json", "text/plain"})
	assert.Equal(t, StagePreValidation, unsupported.Stage)
	assert.Contains(t, unsupported.Error(), "application/json, text/plain")

	invalid := InvalidBody(cause)
	assert.Equal(t, StagePreValidation, invalid.Stage)
	assert.Equal(t, KindInvalidBody, invalid.Kind)
}

func TestRequestFailureAggregation(t *testing.T) {
	t.Parallel()

	f := &RequestFailure{
		Params: Rejected(errors.New("bad id")),
		Body:   InvalidBody(errors.New("not json")),
	}

	assert.True(t, f.HasFailures())
	assert.Contains(t, f.Error(), "params:")
	assert.Contains(t, f.Error(), "body:")
	assert.NotContains(t, f.Error(), "queries:")

	empty := &RequestFailure{}
	assert.False(t, empty.HasFailures())
}
