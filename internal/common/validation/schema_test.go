package validation

import (
	"errors"
	"testing"

	apperrors "careerbot/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestValidator(t *testing.T) *Validator {
	t.Helper()
	pattern := `^[A-Za-z ]+$`
	v, err := Compile(JSONSchema{
		Type:     "object",
		Required: []string{"major", "year"},
		Properties: map[string]Property{
			"major": {Type: "string", MinLength: IntPtr(1), MaxLength: IntPtr(20), Pattern: &pattern},
			"year":  {Type: "string", Enum: []string{"1st Year", "2nd Year"}},
		},
	})
	require.NoError(t, err)
	return v
}

func TestValidateJSON(t *testing.T) {
	v := createTestValidator(t)

	tests := []struct {
		name  string
		doc   string
		field string
		code  string
	}{
		{"valid", `{"major":"Physics","year":"1st Year"}`, "", ""},
		{"missing required", `{"major":"Physics"}`, "year", "REQUIRED_FIELD_MISSING"},
		{"extra field", `{"major":"Physics","year":"1st Year","gpa":9}`, "gpa", "EXTRA_FIELD"},
		{"wrong type", `{"major":7,"year":"1st Year"}`, "major", "INVALID_TYPE"},
		{"too long", `{"major":"Computational Neuroscience","year":"1st Year"}`, "major", "INVALID_LENGTH"},
		{"pattern", `{"major":"CS-101","year":"1st Year"}`, "major", "PATTERN_MISMATCH"},
		{"enum", `{"major":"Physics","year":"9th Year"}`, "year", "INVALID_ENUM"},
		{"malformed", `{"major":`, "(root)", "MALFORMED_DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateJSON([]byte(tt.doc))
			if tt.code == "" {
				assert.True(t, result.Valid)
				assert.Empty(t, result.Errors)
				assert.NoError(t, result.Err())
				return
			}
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.Equal(t, tt.code, result.Errors[0].Code)
		})
	}
}

func TestValidateInput_GoValues(t *testing.T) {
	v := createTestValidator(t)

	assert.True(t, v.ValidateInput(map[string]interface{}{"major": "Physics", "year": "2nd Year"}).Valid)
	assert.False(t, v.ValidateInput(map[string]interface{}{"year": "2nd Year"}).Valid)
}

func TestValidationResult_Err(t *testing.T) {
	v := createTestValidator(t)

	err := v.ValidateJSON([]byte(`{}`)).Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "major")
	assert.Contains(t, err.Error(), "year")

	var nilResult *ValidationResult
	assert.NoError(t, nilResult.Err())
}

func TestMustCompile_PanicsOnBadSchema(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(JSONSchema{Type: "no-such-type"})
	})
}
