package server

import (
	"fmt"
	"strings"

	"github.com/hyperjump/ragd/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

type schemas struct {
	answer   *gojsonschema.Schema
	retrieve *gojsonschema.Schema
	legacy   *gojsonschema.Schema
}

func newSchemas(maxK int) (*schemas, error) {
	nonBlank := map[string]interface{}{
		"type":      "string",
		"minLength": 1,
		"pattern":   `\S`,
	}
	k := map[string]interface{}{
		"type":    "integer",
		"minimum": 1,
		"maximum": maxK,
	}
	answer := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query":    nonBlank,
			"k":        k,
			"template": map[string]interface{}{"type": "string", "enum": []string{"diagnostic", "concise"}},
			"model":    map[string]interface{}{"type": "string", "minLength": 1},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
	retrieve := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": nonBlank,
			"k":     k,
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
	legacy := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"query": nonBlank},
		"required":   []string{"query"},
	}

	var out schemas
	for _, s := range []struct {
		dst **gojsonschema.Schema
		def map[string]interface{}
	}{{&out.answer, answer}, {&out.retrieve, retrieve}, {&out.legacy, legacy}} {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.def))
		if err != nil {
			return nil, fmt.Errorf("compile request schema: %w", err)
		}
		*s.dst = compiled
	}
	return &out, nil
}

// validate checks body against schema and reports every violation in one InvalidArgumentError.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return models.NewInvalidArgument("body", "invalid JSON: %v", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return models.NewInvalidArgument("", "%s", strings.Join(errs, ", "))
}
