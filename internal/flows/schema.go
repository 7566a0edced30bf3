package flows

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Output schemas checked against decoded model replies. "explanation" is
// nullable because a null explanation is repaired rather than rejected.
var (
	generateOutputSchema = func() *openapi3.Schema {
		s := openapi3.NewObjectSchema().
			WithProperty("code", openapi3.NewStringSchema())
		s.Required = []string{"code"}
		return s
	}()

	explainOutputSchema = func() *openapi3.Schema {
		s := openapi3.NewObjectSchema().
			WithProperty("hasError", openapi3.NewBoolSchema()).
			WithProperty("explanation", openapi3.NewStringSchema().WithNullable())
		s.Required = []string{"hasError"}
		return s
	}()
)

// GenerateOutputSchema returns the OpenAPI schema of a code generation result.
func GenerateOutputSchema() *openapi3.Schema { return generateOutputSchema }

// ExplainOutputSchema returns the OpenAPI schema of an error explanation.
func ExplainOutputSchema() *openapi3.Schema { return explainOutputSchema }

func validateOutput(schema *openapi3.Schema, value map[string]any) error {
	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("output does not match schema: %w", err)
	}
	return nil
}
