package validation

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateDocument validates a decoded JSON document against a JSON schema
// given as raw schema bytes.
func ValidateDocument(schema []byte, document map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	docLoader := gojsonschema.NewGoLoader(document)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, err
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, verr := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   verr.Field(),
			Message: verr.Description(),
			Code:    verr.Type(),
		})
	}
	return out, nil
}

// ValidateBytes validates a raw JSON document against a JSON schema.
func ValidateBytes(schema, document []byte) (*ValidationResult, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(document, &doc); err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: "document is not valid JSON: " + err.Error(),
				Code:    "invalid_json",
			}},
		}, nil
	}
	return ValidateDocument(schema, doc)
}
