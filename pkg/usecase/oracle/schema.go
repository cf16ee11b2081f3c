package oracle

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/model"
	"google.golang.org/genai"
)

// interpretation is what the interpret call must answer with: an oracle
// result without the image.
type interpretation struct {
	Type model.ResultType `json:"type" jsonschema:"The format chosen by the Oracle"`
	Text string           `json:"text" jsonschema:"The poetic content, description, or sonic fragment"`
}

// interpretSchema builds the response schema of the interpret call
func interpretSchema() (*genai.Schema, error) {
	schema, err := jsonschema.For[interpretation](nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to infer interpretation schema")
	}

	typeSchema, ok := schema.Properties["type"]
	if !ok {
		return nil, goerr.New("interpretation schema has no type property")
	}
	typeSchema.Enum = make([]any, len(model.ResultTypes))
	for i, t := range model.ResultTypes {
		typeSchema.Enum[i] = string(t)
	}

	return convertJSONSchemaToGenai(schema)
}

// convertJSONSchemaToGenai converts JSON Schema to Gemini genai.Schema
func convertJSONSchemaToGenai(schema *jsonschema.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	out := &genai.Schema{
		Description: schema.Description,
		Required:    schema.Required,
	}

	switch schema.Type {
	case "object":
		out.Type = genai.TypeObject
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	default:
		return nil, goerr.New("unsupported schema type", goerr.V("type", schema.Type))
	}

	for _, v := range schema.Enum {
		s, ok := v.(string)
		if !ok {
			return nil, goerr.New("non-string enum value", goerr.V("value", v))
		}
		out.Enum = append(out.Enum, s)
	}

	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			converted, err := convertJSONSchemaToGenai(prop)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert property schema", goerr.V("property", name))
			}
			out.Properties[name] = converted
		}
	}

	if schema.Items != nil {
		converted, err := convertJSONSchemaToGenai(schema.Items)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert items schema")
		}
		out.Items = converted
	}

	return out, nil
}
