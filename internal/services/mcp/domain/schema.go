package domain

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// inputSchema derives the object schema for T and restricts the named
// properties to the component type enum.
func inputSchema[T any](componentFields ...string) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("derive input schema for %T: %v", *new(T), err))
	}
	for _, field := range componentFields {
		prop, ok := schema.Properties[field]
		if !ok {
			panic(fmt.Sprintf("input schema for %T has no property %q", *new(T), field))
		}
		prop.Enum = componentEnum()
		prop.Description = fmt.Sprintf("%s (one of %s)", prop.Description, componentNames())
	}
	return schema
}
