package openai

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// analysisSchemaJSON is the fixed extraction schema. The four entity
// fields are required; language is optional because some provider
// versions omit it.
const analysisSchemaJSON = `{
	"type": "object",
	"properties": {
		"article_summary": {"type": "array", "items": {"type": "string"}},
		"nationalities": {"type": "array", "items": {"type": "string"}},
		"organizations": {"type": "array", "items": {"type": "string"}},
		"people": {"type": "array", "items": {"type": "string"}},
		"language": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["article_summary", "nationalities", "organizations", "people"],
	"additionalProperties": false
}`

func compileAnalysisSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", strings.NewReader(analysisSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("analysis.json")
}
