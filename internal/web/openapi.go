package web

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/codefionn/codecompanion/internal/flows"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// NewOpenAPIDocument describes the JSON API.
func NewOpenAPIDocument() (*openapi3.T, error) {
	schemas := openapi3.Schemas{}
	ref := func(v any) (*openapi3.Schema, error) {
		s, err := openapi3gen.NewSchemaRefForValue(v, schemas)
		if err != nil {
			return nil, fmt.Errorf("generate schema for %T: %w", v, err)
		}
		return s.Value, nil
	}

	highlightReq, err := ref(&HighlightRequest{})
	if err != nil {
		return nil, err
	}
	highlightResp, err := ref(&HighlightResponse{})
	if err != nil {
		return nil, err
	}
	generateReq, err := ref(&flows.GenerateJavaCodeInput{})
	if err != nil {
		return nil, err
	}
	explainReq, err := ref(&flows.ExplainJavaErrorInput{})
	if err != nil {
		return nil, err
	}
	errorResp, err := ref(&ErrorResponse{})
	if err != nil {
		return nil, err
	}
	healthResp, err := ref(&HealthResponse{})
	if err != nil {
		return nil, err
	}

	paths := openapi3.NewPaths(
		openapi3.WithPath("/api/highlight", &openapi3.PathItem{
			Post: jsonOperation("highlight", "Highlight Java source as HTML", highlightReq, highlightResp, errorResp),
		}),
		openapi3.WithPath("/api/generate", &openapi3.PathItem{
			Post: jsonOperation("generateJavaCode", "Generate Java code from a description", generateReq, flows.GenerateOutputSchema(), errorResp),
		}),
		openapi3.WithPath("/api/explain", &openapi3.PathItem{
			Post: jsonOperation("explainJavaError", "Explain errors in Java code", explainReq, flows.ExplainOutputSchema(), errorResp),
		}),
		openapi3.WithPath("/health", &openapi3.PathItem{
			Get: jsonOperation("health", "Service health", nil, healthResp, errorResp),
		}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Code Companion API",
			Version: APIVersion,
		},
		Paths: paths,
	}, nil
}

func jsonOperation(id, summary string, request, response, failure *openapi3.Schema) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	if request != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(request),
		}
	}

	ok := openapi3.NewResponse().WithDescription("Success").WithJSONSchema(response)
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: ok}),
	)
	if request != nil {
		op.Responses.Set("400", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Invalid input").WithJSONSchema(failure)})
		op.Responses.Set("502", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Model request failed").WithJSONSchema(failure)})
	}
	op.Responses.Set("500", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Internal error").WithJSONSchema(failure)})
	return op
}
