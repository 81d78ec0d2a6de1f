package apifit

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	spec "github.com/getkin/kin-openapi/openapi3"
)

// Info describes the generated OpenAPI document.
type Info struct {
	Title       string
	Version     string
	Description string
}

// BuildOpenAPI builds an OpenAPI 3 document from the endpoint table.
// {name} placeholders of URL templates are already OpenAPI path
// parameters; keys of the query part of templates and of static params
// axes become query parameters; declared return shapes become response
// schemas. Endpoints with computed paths have no static template and
// are skipped.
func BuildOpenAPI(endpoints []Endpoint, info Info) (*spec.T, error) {
	doc := &spec.T{
		OpenAPI: "3.0.0",
		Info: &spec.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: spec.Paths{},
	}

	for i := range endpoints {
		e := &endpoints[i]
		e.validate()
		if e.Path == "" {
			continue
		}
		pathPart, queryPart, _ := strings.Cut(e.Path, "?")
		if !strings.HasPrefix(pathPart, "/") {
			pathPart = "/" + pathPart
		}

		op := spec.NewOperation()
		op.OperationID = e.Name

		for _, name := range findPlaceholders(pathPart) {
			op.AddParameter(spec.NewPathParameter(name).WithSchema(spec.NewStringSchema()))
		}
		if queryPart != "" {
			parsed, err := url.ParseQuery(queryPart)
			if err != nil {
				return nil, declErrf(e.Name, "failed to parse query part of URL template: %v", err)
			}
			for name := range parsed {
				op.AddParameter(spec.NewQueryParameter(name).WithSchema(spec.NewStringSchema()))
			}
		}
		if e.Params != nil && e.Params.fn == nil {
			for name := range e.Params.value {
				op.AddParameter(spec.NewQueryParameter(name).WithSchema(spec.NewStringSchema()))
			}
		}

		if e.Body != nil {
			body := spec.NewRequestBody().WithJSONSchema(spec.NewSchema())
			op.RequestBody = &spec.RequestBodyRef{Value: body}
		}

		response := spec.NewResponse().WithDescription("success")
		if e.Returns != nil {
			response = response.WithJSONSchema(typeSchema(e.Returns))
		}
		op.AddResponse(200, response)

		pathItem := doc.Paths[pathPart]
		if pathItem == nil {
			pathItem = &spec.PathItem{}
			doc.Paths[pathPart] = pathItem
		}
		pathItem.SetOperation(e.Method, op)
	}

	return doc, nil
}

// typeSchema translates a Type into an OpenAPI schema structurally:
// records become objects with required fields, optionals become
// nullable, sequences arrays, mappings additionalProperties and unions
// oneOf.
func typeSchema(t Type) *spec.Schema {
	switch t := t.(type) {
	case *primitiveType:
		switch t.kind {
		case primString:
			return spec.NewStringSchema()
		case primInt:
			return spec.NewInt64Schema()
		case primFloat:
			return spec.NewFloat64Schema()
		default:
			return spec.NewBoolSchema()
		}
	case *optionalType:
		schema := typeSchema(t.elem)
		schema.Nullable = true
		return schema
	case *sequenceType:
		schema := spec.NewArraySchema()
		schema.Items = spec.NewSchemaRef("", typeSchema(t.elem))
		return schema
	case *mappingType:
		schema := spec.NewObjectSchema()
		schema.AdditionalProperties = spec.AdditionalProperties{
			Schema: spec.NewSchemaRef("", typeSchema(t.elem)),
		}
		return schema
	case *recordType:
		schema := spec.NewObjectSchema()
		schema.Properties = make(spec.Schemas, len(t.fields))
		for _, f := range t.fields {
			schema.Properties[f.name] = spec.NewSchemaRef("", typeSchema(f.typ))
			if !f.optional {
				schema.Required = append(schema.Required, f.name)
			}
		}
		return schema
	case *unionType:
		variants := make([]*spec.Schema, 0, len(t.variants))
		for _, v := range t.variants {
			variants = append(variants, typeSchema(v))
		}
		return spec.NewOneOfSchema(variants...)
	default:
		return spec.NewSchema()
	}
}

// OpenAPIGenConfig configures GenerateOpenAPISpec.
type OpenAPIGenConfig struct {
	OutDir    string
	Endpoints []Endpoint
	Info      Info
}

// GenerateOpenAPISpec writes openapi.json for the endpoint table into
// OutDir. Panics on failure, it is meant to be run from a generator
// program.
func GenerateOpenAPISpec(options *OpenAPIGenConfig) {
	doc, err := BuildOpenAPI(options.Endpoints, options.Info)
	panicIf(err)
	content, err := json.MarshalIndent(doc, "", " ")
	panicIf(err)
	err = os.MkdirAll(options.OutDir, os.ModePerm)
	panicIf(err)
	err = os.WriteFile(filepath.Join(options.OutDir, "openapi.json"), content, 0o644)
	panicIf(err)
}
