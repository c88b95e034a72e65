package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is the subset of JSON Schema draft-07 the workers generate.
type JSONSchema struct {
	Schema               string              `json:"$schema,omitempty"`
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
	Items                *Property           `json:"items,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MaxAnswerLength bounds a single free-text survey answer.
const MaxAnswerLength = 4096

// AnswerSchema describes a keyed survey response: an object whose keys are
// schedule field names and whose values are strings. Fields may be
// omitted; unknown fields are rejected.
func AnswerSchema(fields []string) JSONSchema {
	maxLen := MaxAnswerLength
	props := make(map[string]Property, len(fields))
	for _, f := range fields {
		props[f] = Property{Type: "string", MaxLength: &maxLen}
	}
	closed := false
	return JSONSchema{
		Schema:               "http://json-schema.org/draft-07/schema#",
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: &closed,
	}
}

// RawAnswersSchema describes a positional survey response.
func RawAnswersSchema() JSONSchema {
	maxLen := MaxAnswerLength
	return JSONSchema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Type:   "array",
		Items:  &Property{Type: "string", MaxLength: &maxLen},
	}
}

// Validate checks document, a decoded JSON value, against schema.
func Validate(document interface{}, schema JSONSchema) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		field := e.Field()
		if p, ok := e.Details()["property"].(string); ok && e.Type() == "additional_property_not_allowed" {
			field = p
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}

// ValidateJSON decodes raw and validates it against schema.
func ValidateJSON(raw []byte, schema JSONSchema) (*ValidationResult, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return Validate(doc, schema)
}

// GetErrorMessages returns "field: message" for every error.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors reports whether field has at least one error.
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
