package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fields = []string{"timestamp", "lead_official", "funds_budget"}

func TestValidate_KeyedAnswers(t *testing.T) {
	tests := []struct {
		name       string
		doc        interface{}
		valid      bool
		errorField string
		errorCode  string
	}{
		{
			name:  "all strings",
			doc:   map[string]interface{}{"timestamp": "2015-06-01", "funds_budget": "1000"},
			valid: true,
		},
		{
			name:  "empty object",
			doc:   map[string]interface{}{},
			valid: true,
		},
		{
			name:       "number instead of string",
			doc:        map[string]interface{}{"funds_budget": 1000.0},
			errorField: "funds_budget",
			errorCode:  "INVALID_TYPE",
		},
		{
			name:       "unknown field",
			doc:        map[string]interface{}{"budget": "1000"},
			errorField: "budget",
			errorCode:  "ADDITIONAL_PROPERTY_NOT_ALLOWED",
		},
		{
			name:       "answer too long",
			doc:        map[string]interface{}{"lead_official": strings.Repeat("x", MaxAnswerLength+1)},
			errorField: "lead_official",
			errorCode:  "STRING_LTE",
		},
	}

	schema := AnswerSchema(fields)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(tt.doc, schema)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.True(t, res.HasErrors(tt.errorField), "errors: %v", res.GetErrorMessages())
				assert.Equal(t, tt.errorCode, res.Errors[0].Code)
			}
		})
	}
}

func TestValidateJSON_RawAnswers(t *testing.T) {
	res, err := ValidateJSON([]byte(`["2015-06-01", "Alcalde", ""]`), RawAnswersSchema())
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateJSON([]byte(`["2015-06-01", 3]`), RawAnswersSchema())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorMessages(), 1)

	_, err = ValidateJSON([]byte(`{`), RawAnswersSchema())
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("datos@ciudad.gob.mx"))
	assert.False(t, ValidateEmail("not-an-email"))
}
