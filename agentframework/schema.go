// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// jsonSchema is the subset of JSON Schema produced for tool parameters.
type jsonSchema struct {
	Type                 string                 `json:"type"`
	Description          string                 `json:"description,omitempty"`
	Enum                 []any                  `json:"enum,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	AdditionalProperties *jsonSchema            `json:"additionalProperties,omitempty"`
	Required             []string               `json:"required,omitempty"`
}

func generateSchemaFromType(v any) json.RawMessage {
	t := reflect.TypeOf(v)
	if t == nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	b, _ := json.Marshal(schemaForType(t))
	return b
}

func schemaForType(t reflect.Type) *jsonSchema {
	switch t.Kind() {
	case reflect.String:
		return &jsonSchema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonSchema{Type: "number"}
	case reflect.Bool:
		return &jsonSchema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &jsonSchema{Type: "array", Items: schemaForType(t.Elem())}
	case reflect.Ptr:
		return schemaForType(t.Elem())
	case reflect.Struct:
		return schemaForStruct(t)
	case reflect.Map:
		s := &jsonSchema{Type: "object"}
		if t.Key().Kind() == reflect.String {
			s.AdditionalProperties = schemaForType(t.Elem())
		}
		return s
	default:
		return &jsonSchema{Type: "string"}
	}
}

func schemaForStruct(t reflect.Type) *jsonSchema {
	s := &jsonSchema{Type: "object", Properties: map[string]*jsonSchema{}}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := jsonFieldName(field)
		if !ok {
			continue
		}

		prop := schemaForType(field.Type)
		for _, part := range strings.Split(field.Tag.Get("jsonschema"), ",") {
			key, val, _ := strings.Cut(part, "=")
			switch strings.TrimSpace(key) {
			case "description":
				prop.Description = strings.TrimSpace(val)
			case "required":
				s.Required = append(s.Required, name)
			case "enum":
				for _, ev := range strings.Split(val, "|") {
					prop.Enum = append(prop.Enum, strings.TrimSpace(ev))
				}
			}
		}
		s.Properties[name] = prop
	}
	return s
}

func jsonFieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, true
}

// ValidateArguments checks raw tool arguments against a JSON Schema.
// Empty arguments are treated as an empty object. The returned error
// wraps [ErrToolArguments].
func ValidateArguments(schema, args json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	if len(strings.TrimSpace(string(args))) == 0 {
		args = json.RawMessage(`{}`)
	}
	if !json.Valid(args) {
		return fmt.Errorf("%w: arguments are not valid JSON", ErrToolArguments)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(args),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrToolArguments, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}
		return fmt.Errorf("%w: %s", ErrToolArguments, strings.Join(msgs, "; "))
	}
	return nil
}
