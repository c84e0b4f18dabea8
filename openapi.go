package restcall

import (
	"fmt"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// GenerateOpenAPI builds an OpenAPI 3.0 document describing the given
// service definition types. Values may be instances or pointers; they
// are compiled (or taken from the compile cache) exactly as Bind
// compiles them, so the document always matches what bound instances
// do. Path templates translate one to one, {id} is valid OpenAPI.
func GenerateOpenAPI(title, version string, services ...interface{}) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
	for _, service := range services {
		t := reflect.TypeOf(service)
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil {
			return nil, fmt.Errorf("nil service passed to GenerateOpenAPI")
		}
		desc, err := defaultFactory.getOrCompile(t)
		if err != nil {
			return nil, err
		}
		for _, d := range desc.methods {
			if err := addOperation(doc, d); err != nil {
				return nil, fmt.Errorf("method %s: %w", d.name, err)
			}
		}
	}
	return doc, nil
}

func addOperation(doc *openapi3.T, d *methodDesc) error {
	op := openapi3.NewOperation()
	op.OperationID = d.name
	op.Tags = append(op.Tags, d.service)

	for _, p := range d.params.path {
		param := openapi3.NewPathParameter(p.name).WithSchema(schemaForArg(d.fnType.In(p.index)))
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
	}
	for _, p := range d.params.query {
		param := openapi3.NewQueryParameter(p.name).WithSchema(schemaForArg(d.fnType.In(p.index)))
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
	}
	for _, p := range d.params.header {
		param := openapi3.NewHeaderParameter(p.name).WithSchema(schemaForArg(d.fnType.In(p.index)))
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: param})
	}

	if d.params.bodyIndex != -1 {
		body := openapi3.NewRequestBody()
		if d.params.bodyMode == BodyJSON {
			ref, err := schemaRefForType(doc, d.fnType.In(d.params.bodyIndex))
			if err != nil {
				return fmt.Errorf("request body: %w", err)
			}
			body = body.WithContent(openapi3.NewContentWithJSONSchemaRef(ref))
		} else {
			schema := openapi3.NewStringSchema().WithFormat("binary")
			body = body.WithContent(openapi3.NewContentWithSchema(schema, []string{"application/octet-stream"}))
		}
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	op.Responses = openapi3.NewResponses()
	response := openapi3.NewResponse().WithDescription("success")
	switch d.shape {
	case returnTyped:
		ref, err := schemaRefForType(doc, d.resultType)
		if err != nil {
			return fmt.Errorf("response: %w", err)
		}
		response = response.WithContent(openapi3.NewContentWithJSONSchemaRef(ref))
	case returnEnvelope:
		ref, err := schemaRefForType(doc, d.resultType.Field(d.envValueIndex).Type)
		if err != nil {
			return fmt.Errorf("response: %w", err)
		}
		response = response.WithContent(openapi3.NewContentWithJSONSchemaRef(ref))
	}
	op.AddResponse(200, response)

	item := doc.Paths[d.path]
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths[d.path] = item
	}
	item.SetOperation(d.httpMethod, op)
	return nil
}

// schemaForArg maps an argument type to the schema of its textual
// form. Everything is sent as text; numeric kinds still get a numeric
// schema to keep the document useful.
func schemaForArg(t reflect.Type) *openapi3.Schema {
	switch t.Kind() {
	case reflect.Bool:
		return openapi3.NewBoolSchema()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema()
	default:
		return openapi3.NewStringSchema()
	}
}

func schemaRefForType(doc *openapi3.T, t reflect.Type) (*openapi3.SchemaRef, error) {
	value := reflect.New(t).Elem().Interface()
	return openapi3gen.NewSchemaRefForValue(value, doc.Components.Schemas)
}
