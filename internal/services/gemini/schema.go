package gemini

import (
	"google.golang.org/genai"

	"scriptdna/internal/generation"
)

// toGenaiSchema converts a provider-neutral schema. Nil maps to nil.
func toGenaiSchema(schema *generation.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(schema.Type),
		Description: schema.Description,
		Required:    append([]string(nil), schema.Required...),
		Items:       toGenaiSchema(schema.Items),
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t generation.SchemaType) genai.Type {
	switch t {
	case generation.TypeObject:
		return genai.TypeObject
	case generation.TypeArray:
		return genai.TypeArray
	case generation.TypeNumber:
		return genai.TypeNumber
	case generation.TypeInteger:
		return genai.TypeInteger
	case generation.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
