// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package toolcatalog

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// ArgumentError describes arguments that do not satisfy a tool schema.
type ArgumentError struct {
	Tool     string
	Problems []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// Validate checks args, a JSON object, against the tool schema: required arguments present and non-null,
// declared types and enums respected, and no undeclared arguments.
func (t Tool) Validate(args []byte) error {
	if len(args) == 0 {
		args = []byte("{}")
	}

	if !gjson.ValidBytes(args) {
		return &ArgumentError{Tool: t.Name, Problems: []string{"arguments are not valid JSON"}}
	}

	parsed := gjson.ParseBytes(args)
	if !parsed.IsObject() {
		return &ArgumentError{Tool: t.Name, Problems: []string{"arguments must be a JSON object"}}
	}

	var problems []string
	for _, name := range t.Required() {
		value := parsed.Get(gjson.Escape(name))
		if !value.Exists() || value.Type == gjson.Null {
			problems = append(problems, fmt.Sprintf("missing required argument %q", name))
		}
	}

	properties := gjson.GetBytes(t.Parameters, "properties")
	allowAdditional := gjson.GetBytes(t.Parameters, "additionalProperties")
	parsed.ForEach(func(key, value gjson.Result) bool {
		schema := properties.Get(gjson.Escape(key.String()))
		if !schema.Exists() {
			if allowAdditional.Exists() && !allowAdditional.Bool() {
				problems = append(problems, fmt.Sprintf("unknown argument %q", key.String()))
			}
			return true
		}

		if value.Type == gjson.Null {
			return true
		}

		if problem := checkValue(key.String(), schema, value); problem != "" {
			problems = append(problems, problem)
		}
		return true
	})

	if len(problems) > 0 {
		return &ArgumentError{Tool: t.Name, Problems: problems}
	}

	return nil
}

func checkValue(name string, schema gjson.Result, value gjson.Result) string {
	expected := schema.Get("type").String()
	if !matchesType(expected, value) {
		return fmt.Sprintf("argument %q must be of type %s", name, expected)
	}

	if enum := schema.Get("enum"); enum.Exists() {
		var allowed []string
		for _, option := range enum.Array() {
			allowed = append(allowed, option.String())
		}
		if !slices.Contains(allowed, value.String()) {
			return fmt.Sprintf("argument %q must be one of %s", name, strings.Join(allowed, ", "))
		}
	}

	if expected == "array" {
		itemType := schema.Get("items.type").String()
		for _, item := range value.Array() {
			if !matchesType(itemType, item) {
				return fmt.Sprintf("argument %q must contain only %s values", name, itemType)
			}
		}
	}

	return ""
}

func matchesType(expected string, value gjson.Result) bool {
	switch expected {
	case "":
		return true
	case "string":
		return value.Type == gjson.String
	case "integer":
		return value.Type == gjson.Number && value.Num == math.Trunc(value.Num)
	case "number":
		return value.Type == gjson.Number
	case "boolean":
		return value.IsBool()
	case "array":
		return value.IsArray()
	case "object":
		return value.IsObject()
	default:
		return true
	}
}
