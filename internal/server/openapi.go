package server

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-genui/pkg/schema"
)

const componentRef = "#/components/schemas/"

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	s.openapiOnce.Do(func() {
		s.openapiDoc = BuildOpenAPI(s.orchestrator.Catalogue(), s.version)
	})
	s.writeJSON(w, http.StatusOK, s.openapiDoc)
}

// BuildOpenAPI describes the HTTP API. Every catalogue entry contributes a
// "<type>.props" schema so clients can validate nodes before sending them.
func BuildOpenAPI(catalogue *schema.Catalogue, version string) *openapi3.T {
	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		"Node":          openapi3.NewSchemaRef("", nodeSchema(catalogue)),
		"Error":         openapi3.NewSchemaRef("", errorSchema()),
		"RenderStats":   openapi3.NewSchemaRef("", statsSchema()),
		"ExtractReport": openapi3.NewSchemaRef("", reportSchema()),
	}
	if catalogue != nil {
		for _, name := range catalogue.Types() {
			entry, _ := catalogue.Lookup(name)
			components.Schemas[name+".props"] = openapi3.NewSchemaRef("", entry.Schema())
		}
	}

	paths := openapi3.NewPaths()
	paths.Set("/healthz", &openapi3.PathItem{Get: operation("health", "Liveness and registered renderers",
		nil, jsonResponse("Service status", openapi3.NewObjectSchema().
			WithProperty("status", openapi3.NewStringSchema()).
			WithProperty("version", openapi3.NewStringSchema()).
			WithProperty("renderers", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))))})

	paths.Set("/api/catalogue", &openapi3.PathItem{Get: operation("catalogue", "Component vocabulary keyed by type",
		nil, jsonResponse("Catalogue", openapi3.NewObjectSchema().WithAnyAdditionalProperties()))})

	paths.Set("/api/openapi.json", &openapi3.PathItem{Get: operation("openapi", "This document",
		nil, jsonResponse("OpenAPI document", openapi3.NewObjectSchema().WithAnyAdditionalProperties()))})

	paths.Set("/api/extract", &openapi3.PathItem{Post: operation("extract", "Extract component nodes from model text",
		openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(
			openapi3.NewObjectSchema().WithProperty("text", openapi3.NewStringSchema())),
		jsonResponse("Extracted nodes", openapi3.NewObjectSchema().
			WithPropertyRef("nodes", nodeArrayRef()).
			WithPropertyRef("report", ref("ExtractReport"))))})

	renderOp := operation("render", "Render nodes, or nodes extracted from text",
		openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(
			openapi3.NewObjectSchema().
				WithProperty("text", openapi3.NewStringSchema()).
				WithPropertyRef("nodes", nodeArrayRef()).
				WithProperty("renderer", openapi3.NewStringSchema()).
				WithProperty("theme", openapi3.NewStringSchema()).
				WithProperty("variant", openapi3.NewStringSchema()).
				WithProperty("document", openapi3.NewBoolSchema())),
		openapi3.NewResponse().WithDescription("Renderer output in the renderer's content type").
			WithContent(openapi3.Content{
				"text/html":  &openapi3.MediaType{Schema: openapi3.NewStringSchema().NewRef()},
				"text/plain": &openapi3.MediaType{Schema: openapi3.NewStringSchema().NewRef()},
			}))
	paths.Set("/api/render", &openapi3.PathItem{Post: renderOp})

	generateOp := operation("generate", "Generate UI for a session and merge it into the session grid",
		openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(
			openapi3.NewObjectSchema().
				WithProperty("prompt", openapi3.NewStringSchema()).
				WithProperty("text", openapi3.NewStringSchema()).
				WithProperty("renderer", openapi3.NewStringSchema()).
				WithProperty("theme", openapi3.NewStringSchema()).
				WithProperty("variant", openapi3.NewStringSchema()).
				WithProperty("document", openapi3.NewBoolSchema()).
				WithProperty("model", openapi3.NewStringSchema())),
		jsonResponse("Generation result", openapi3.NewObjectSchema().
			WithProperty("requestId", openapi3.NewStringSchema()).
			WithProperty("session", openapi3.NewStringSchema()).
			WithPropertyRef("nodes", nodeArrayRef()).
			WithPropertyRef("grid", nodeArrayRef()).
			WithProperty("output", openapi3.NewStringSchema()).
			WithProperty("renderer", openapi3.NewStringSchema()).
			WithProperty("contentType", openapi3.NewStringSchema()).
			WithPropertyRef("stats", ref("RenderStats")).
			WithPropertyRef("extraction", ref("ExtractReport")).
			WithProperty("fallback", openapi3.NewBoolSchema())))
	generateOp.AddParameter(sessionParam())

	gridOp := operation("sessionGrid", "Stored grid for a session",
		nil, jsonResponse("Session grid", openapi3.NewObjectSchema().
			WithProperty("session", openapi3.NewStringSchema()).
			WithPropertyRef("grid", nodeArrayRef())))
	gridOp.AddParameter(sessionParam())

	resetOp := operation("resetSession", "Forget a session grid", nil, nil)
	resetOp.AddResponse(http.StatusNoContent, openapi3.NewResponse().WithDescription("Session removed"))
	resetOp.AddParameter(sessionParam())

	paths.Set("/api/sessions/{id}", &openapi3.PathItem{Get: gridOp, Delete: resetOp})
	paths.Set("/api/sessions/{id}/generate", &openapi3.PathItem{Post: generateOp})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "genui",
			Description: "Generative UI extraction and rendering",
			Version:     version,
		},
		Paths:      paths,
		Components: &components,
	}
}

func operation(id, summary string, body *openapi3.RequestBody, ok *openapi3.Response) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	if body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}
	op.Responses = openapi3.NewResponses(openapi3.WithName("default", openapi3.NewResponse().
		WithDescription("Error").
		WithJSONSchemaRef(ref("Error"))))
	if ok != nil {
		op.AddResponse(http.StatusOK, ok)
	}
	return op
}

func jsonResponse(description string, body *openapi3.Schema) *openapi3.Response {
	return openapi3.NewResponse().WithDescription(description).WithJSONSchema(body)
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(componentRef+name, nil)
}

func nodeArrayRef() *openapi3.SchemaRef {
	nodes := openapi3.NewArraySchema()
	nodes.Items = ref("Node")
	return nodes.NewRef()
}

func sessionParam() *openapi3.Parameter {
	return openapi3.NewPathParameter("id").
		WithDescription("Session identifier").
		WithSchema(openapi3.NewStringSchema())
}

// nodeSchema accepts any type string and any props; unknown types render as
// placeholders.
func nodeSchema(catalogue *schema.Catalogue) *openapi3.Schema {
	typ := openapi3.NewStringSchema()
	typ.Description = "Component type"
	if catalogue != nil && catalogue.Len() > 0 {
		typ.Description = "Component type; known types have a matching <type>.props schema"
	}
	children := &openapi3.Schema{
		OneOf: openapi3.SchemaRefs{
			openapi3.NewStringSchema().NewRef(),
			openapi3.NewArraySchema().WithItems(&openapi3.Schema{}).NewRef(),
		},
		Description: "Literal text or a sequence of nodes and text runs",
	}
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("type", typ).
		WithProperty("props", openapi3.NewObjectSchema().WithAnyAdditionalProperties()).
		WithProperty("children", children).
		WithRequired([]string{"type"})
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema()).
		WithRequired([]string{"error", "code"})
}

func statsSchema() *openapi3.Schema {
	stats := openapi3.NewObjectSchema()
	for _, name := range []string{"nodes", "unknown", "truncated", "disallowed", "malformed", "failed", "droppedProps", "propIssues"} {
		stats.WithProperty(name, openapi3.NewIntegerSchema())
	}
	return stats.WithProperty("unknownTypes", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
}

func reportSchema() *openapi3.Schema {
	report := openapi3.NewObjectSchema()
	for _, name := range []string{"candidates", "malformed", "unbalanced", "parsed", "dropped", "accepted"} {
		report.WithProperty(name, openapi3.NewIntegerSchema())
	}
	return report
}
